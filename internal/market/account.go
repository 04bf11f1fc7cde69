package market

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrUserExists the username or email is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrBadCredentials the login username, password or account type did
	// not match.
	ErrBadCredentials = errors.New("invalid username or password")
)

// AccountService handles registration and login. Registering a customer
// creates their single cart in the same transaction.
type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

func (s *AccountService) Register(ctx context.Context, user *domain.User, password string) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.Username == "" || user.Email == "" {
		return errors.New("username and email are required")
	}
	switch user.Usertype {
	case domain.UserTypeCustomer, domain.UserTypeVendor, domain.UserTypeAdmin:
	default:
		return errors.New("invalid account type")
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if user.ID == 0 {
		user.ID = common.UUIDint64()
	}
	user.Status = common.ENABLED

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&domain.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count)
		if count > 0 {
			return ErrUserExists
		}

		if err := tx.Create(user).Error; err != nil {
			return translateDBError(err)
		}

		if user.Usertype == domain.UserTypeCustomer {
			cart := domain.Cart{
				ID:         common.UUIDint64(),
				CustomerID: user.ID,
				CartPrice:  0,
			}
			if err := tx.Create(&cart).Error; err != nil {
				return translateDBError(err)
			}
		}
		return nil
	})
	if err != nil {
		return translateDBError(err)
	}

	zap.L().Info("user registered",
		zap.String("username", user.Username),
		zap.String("usertype", user.Usertype))
	return nil
}

// Authenticate checks credentials and account type. Admin accounts may log
// in through any type selector.
func (s *AccountService) Authenticate(ctx context.Context, username, password, usertype string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, translateDBError(err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrBadCredentials
	}
	if usertype != "" && user.Usertype != usertype && user.Usertype != domain.UserTypeAdmin {
		return nil, ErrBadCredentials
	}

	s.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", user.ID).
		Update("last_login", time.Now())
	return &user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &user, nil
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translateDBError(err)
	}
	return &user, nil
}
