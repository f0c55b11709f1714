package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"login_backend/internal/feature/identity/domain/entity"
)

// defaultNicknamePrefix + 電話番号の下4桁がデフォルトのニックネームになる。
const defaultNicknamePrefix = "用户"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// FindByPhone returns ErrUserNotFound when no user owns phone.
	FindByPhone(ctx context.Context, phone string) (*entity.User, error)

	// FindByWechatOpenID returns ErrUserNotFound when no user has openID.
	FindByWechatOpenID(ctx context.Context, openID string) (*entity.User, error)

	// FindByWechatUnionID returns the oldest user with unionID, or ErrUserNotFound.
	FindByWechatUnionID(ctx context.Context, unionID string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when id does not exist.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Create inserts u and fills its ID. Unique violations are returned as ErrConflict.
	Create(ctx context.Context, u *entity.User) error

	// SetPhone writes phone and marks it verified on row id, leaving other columns untouched.
	// Unique violations are returned as ErrConflict.
	SetPhone(ctx context.Context, id uint, phone string) error

	// ApplyProviderIdentity overwrites the openid of row id and fills unionid, nickname and
	// avatar only where the stored value is still empty. Unique violations are returned as ErrConflict.
	ApplyProviderIdentity(ctx context.Context, id uint, p entity.ProviderIdentity) error
}

// identityResolver はアカウントの検索・作成・紐付けを実装します。
type identityResolver struct {
	users  UserRepository
	logger *slog.Logger
}

// Option configures an identityResolver.
type Option func(*identityResolver)

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(r *identityResolver) { r.logger = l }
}

// NewIdentityResolver はidentityResolverの新しいインスタンスを生成します。
func NewIdentityResolver(users UserRepository, opts ...Option) *identityResolver {
	r := &identityResolver{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultNickname returns "用户" followed by the last four characters of phone.
func DefaultNickname(phone string) string {
	r := []rune(phone)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	return defaultNicknamePrefix + string(r)
}

// LoginOrRegisterByPhone は電話番号でユーザーを検索し、存在しなければ作成します。
// 呼び出し元でコード検証が済んでいることが前提です。
func (r *identityResolver) LoginOrRegisterByPhone(ctx context.Context, phone, nickname string) (*entity.User, error) {
	u, err := r.users.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if !u.IsActive {
			return nil, ErrUserDisabled
		}
		return u, nil
	case errors.Is(err, ErrUserNotFound):
		return r.createByPhone(ctx, phone, nickname)
	default:
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
}

// RegisterByPhone は新規アカウントのみを作成し、既存の場合はErrAlreadyRegisteredを返します。
func (r *identityResolver) RegisterByPhone(ctx context.Context, phone, nickname string) (*entity.User, error) {
	_, err := r.users.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		return nil, ErrAlreadyRegistered
	case errors.Is(err, ErrUserNotFound):
	default:
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}

	u, err := r.createByPhone(ctx, phone, nickname)
	if errors.Is(err, ErrConflict) {
		// 事前チェック後に同じ電話番号で登録された
		return nil, fmt.Errorf("%w: %w", ErrAlreadyRegistered, err)
	}
	return u, err
}

func (r *identityResolver) createByPhone(ctx context.Context, phone, nickname string) (*entity.User, error) {
	if nickname == "" {
		nickname = DefaultNickname(phone)
	}
	u := &entity.User{
		Phone:         &phone,
		PhoneVerified: true,
		Nickname:      &nickname,
		IsActive:      true,
	}
	if err := r.users.Create(ctx, u); err != nil {
		return nil, err
	}
	r.logger.Info("user created by phone", "user_id", u.ID)
	return u, nil
}

// LoginByOAuth はunionid、openidの順でユーザーを検索し、見つからなければ作成します。
// 既存ユーザーの場合、openidは常に上書きし、unionid・ニックネーム・アバターは空の場合のみ設定します。
// 2番目の戻り値は新規作成かどうかを示します。
func (r *identityResolver) LoginByOAuth(ctx context.Context, id entity.ProviderIdentity) (*entity.User, bool, error) {
	if id.OpenID == "" {
		return nil, false, &ProviderError{Message: "provider returned no openid"}
	}

	u, err := r.findByProviderIdentity(ctx, id)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	if u == nil {
		u = &entity.User{
			WechatOpenID:  &id.OpenID,
			WechatUnionID: entity.OptionalString(id.UnionID),
			Nickname:      entity.OptionalString(id.Nickname),
			Avatar:        entity.OptionalString(id.Avatar),
			IsActive:      true,
		}
		if err := r.users.Create(ctx, u); err != nil {
			return nil, false, err
		}
		r.logger.Info("user created by oauth", "user_id", u.ID)
		return u, true, nil
	}

	if !u.IsActive {
		return nil, false, ErrUserDisabled
	}

	if !mergeProviderIdentity(u, id) {
		return u, false, nil
	}
	if err := r.users.ApplyProviderIdentity(ctx, u.ID, id); err != nil {
		return nil, false, err
	}
	fresh, err := r.users.FindByID(ctx, u.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload user: %w", err)
	}
	return fresh, false, nil
}

func (r *identityResolver) findByProviderIdentity(ctx context.Context, id entity.ProviderIdentity) (*entity.User, error) {
	if id.UnionID != "" {
		u, err := r.users.FindByWechatUnionID(ctx, id.UnionID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("failed to find user by unionid: %w", err)
		}
	}

	u, err := r.users.FindByWechatOpenID(ctx, id.OpenID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user by openid: %w", err)
	}
	return u, nil
}

// mergeProviderIdentity applies the refresh rules to u and reports whether anything changed.
// The repository repeats the empty checks in storage, so a stale u never overwrites a newer value.
func mergeProviderIdentity(u *entity.User, id entity.ProviderIdentity) bool {
	changed := false

	if entity.StringValue(u.WechatOpenID) != id.OpenID {
		u.WechatOpenID = &id.OpenID
		changed = true
	}
	changed = fillIfEmpty(&u.WechatUnionID, id.UnionID) || changed
	changed = fillIfEmpty(&u.Nickname, id.Nickname) || changed
	changed = fillIfEmpty(&u.Avatar, id.Avatar) || changed

	return changed
}

// fillIfEmpty sets *dst to v only when the stored value is empty and v is not.
func fillIfEmpty(dst **string, v string) bool {
	if v == "" || entity.StringValue(*dst) != "" {
		return false
	}
	*dst = &v
	return true
}

// BindPhone は認証済みユーザーに電話番号を紐付けます。
// 同じユーザーが既に所有している場合は書き込みを行いません。
func (r *identityResolver) BindPhone(ctx context.Context, u *entity.User, phone string) (*entity.User, error) {
	owner, err := r.users.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if owner.ID != u.ID {
			return nil, ErrPhoneAlreadyBound
		}
		if owner.PhoneVerified {
			return owner, nil
		}
	case errors.Is(err, ErrUserNotFound):
	default:
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}

	if err := r.users.SetPhone(ctx, u.ID, phone); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("%w: %w", ErrPhoneAlreadyBound, err)
		}
		return nil, err
	}
	r.logger.Info("phone bound to user", "user_id", u.ID)

	fresh, err := r.users.FindByID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return fresh, nil
}

// FindByID はIDでユーザーを取得します。
func (r *identityResolver) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.users.FindByID(ctx, id)
}
