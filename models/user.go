package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/checkin_backend/config"
	"github.com/mmdatafocus/checkin_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100" json:"name"`
	Email     *string   `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"password,omitempty"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	Role      UserRole  `gorm:"type:enum('admin','user');default:'user'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

// PrepareGive blanks the credential before the record leaves the core.
func (result *User) PrepareGive() {
	result.Password = ""
}

type LoginInfo struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	var count int64

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, utils.NewValidationError("invalid email address")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return nil, utils.NewValidationError("invalid phone number")
		}
	}

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", input.Username).Count(&count).Error
	if err != nil {
		return nil, utils.NewInternalError("failed to create user", err)
	}
	if count > 0 {
		return nil, utils.NewConflictError("duplicate username")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, utils.NewInternalError("failed to create user", err)
	}

	user := User{
		Username: input.Username,
		Name:     input.Name,
		Phone:    input.Phone,
		Password: string(hashedPassword),
		IsActive: utils.NewTrue(),
		Role:     UserRoleUser,
	}
	if input.Email != "" {
		email := strings.ToLower(input.Email)
		user.Email = &email
	}

	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, utils.NewConflictError("duplicate username")
		}
		return nil, utils.NewInternalError("failed to create user", err)
	}

	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()

	user := User{}
	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return nil, utils.NewValidationError("invalid username or password")
	}

	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, utils.NewValidationError("invalid username or password")
	}

	if user.IsActive != nil && !*user.IsActive {
		return nil, utils.NewValidationError("user is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, utils.NewInternalError("failed to issue token", err)
	}

	return &LoginInfo{
		Token: token,
		Name:  user.Username,
		Role:  string(user.Role),
	}, nil
}

func GetUserById(ctx context.Context, id int) (*User, error) {

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	user.PrepareGive()
	return &user, nil
}

func GetAllUsers(ctx context.Context) ([]*User, error) {

	db := config.GetDB()
	var results []*User

	if err := db.WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, utils.NewInternalError("failed to list users", err)
	}

	for i, u := range results {
		u.PrepareGive()
		results[i] = u
	}

	return results, nil
}

// validateUserExists is the cheap existence probe every check-in operation
// starts with.
func validateUserExists(ctx context.Context, userId int) error {
	if userId <= 0 {
		return utils.NewValidationError("user id is required")
	}

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&User{}).Where("id = ?", userId).Count(&count).Error; err != nil {
		return utils.NewInternalError("failed to look up user", err)
	}
	if count <= 0 {
		return utils.NewNotFoundError("user not found")
	}
	return nil
}
