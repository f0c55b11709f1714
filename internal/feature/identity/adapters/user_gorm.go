// Package adapters はidentityフィーチャーのリポジトリとOAuth実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"login_backend/internal/feature/identity/domain/entity"
	"login_backend/internal/feature/identity/usecase"
)

// pgUniqueViolation is PostgreSQL's SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm はUserRepositoryインターフェースのGORM実装です。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// isDuplicateKey reports whether err is a unique constraint violation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// SQLite（テスト用）
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *userGorm) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, args...).Order("id ASC").First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByPhone は電話番号でユーザーを取得します。
func (r *userGorm) FindByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return r.first(ctx, "phone = ?", phone)
}

// FindByWechatOpenID はopenidでユーザーを取得します。
func (r *userGorm) FindByWechatOpenID(ctx context.Context, openID string) (*entity.User, error) {
	return r.first(ctx, "wechat_open_id = ?", openID)
}

// FindByWechatUnionID はunionidを持つ最も古いユーザーを取得します。
// unionidは一意ではないため、ID順で先頭の行を返します。
func (r *userGorm) FindByWechatUnionID(ctx context.Context, unionID string) (*entity.User, error) {
	return r.first(ctx, "wechat_union_id = ?", unionID)
}

// FindByID はIDでユーザーを取得します。
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// Create はユーザーをデータベースに追加します。
// 一意制約違反の場合、usecase.ErrConflictを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("user is nil")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %w", usecase.ErrConflict, err)
		}
		return err
	}
	return nil
}

// errNoID is returned when a write targets the zero id.
var errNoID = errors.New("user has no id")

// writeResult maps a single-row UPDATE result onto the repository errors.
func writeResult(res *gorm.DB) error {
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return fmt.Errorf("%w: %w", usecase.ErrConflict, res.Error)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// SetPhone は phone と phone_verified のみを更新します。
// 他のカラムは書き込まないため、並行するOAuthログインの更新と競合しません。
func (r *userGorm) SetPhone(ctx context.Context, id uint, phone string) error {
	if id == 0 {
		return errNoID
	}
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).
		Updates(map[string]any{"phone": phone, "phone_verified": true})
	return writeResult(res)
}

// fillColumns are written only while the stored value is NULL or empty.
var fillColumns = []struct {
	column string
	value  func(entity.ProviderIdentity) string
}{
	{"wechat_union_id", func(p entity.ProviderIdentity) string { return p.UnionID }},
	{"nickname", func(p entity.ProviderIdentity) string { return p.Nickname }},
	{"avatar", func(p entity.ProviderIdentity) string { return p.Avatar }},
}

// ApplyProviderIdentity はopenidを上書きし、unionid・ニックネーム・アバターは
// DB上で空の場合のみ設定します。条件付きUPDATEのため、古い読み取りに基づく呼び出しでも
// 先に書かれた値を上書きしません。
func (r *userGorm) ApplyProviderIdentity(ctx context.Context, id uint, p entity.ProviderIdentity) error {
	if id == 0 {
		return errNoID
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.User{}).Where("id = ?", id).Update("wechat_open_id", p.OpenID)
		if err := writeResult(res); err != nil {
			return err
		}
		for _, f := range fillColumns {
			v := f.value(p)
			if v == "" {
				continue
			}
			cond := fmt.Sprintf("id = ? AND (%[1]s IS NULL OR %[1]s = '')", f.column)
			if err := tx.Model(&entity.User{}).Where(cond, id).Update(f.column, v).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
