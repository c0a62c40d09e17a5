package service

import (
	"context"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"Community_Feed/internal/model"
	"Community_Feed/internal/pkg"
	"Community_Feed/internal/repository/rdb"
)

const minPasswordLen = 8

// TokenBlacklist 已吊销的 refresh token；Revoke 返回 false 表示之前已被吊销
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

type Mailer interface {
	SendWelcome(ctx context.Context, to, username string) error
}

type UserService struct {
	deps      Deps
	repo      *rdb.UserRepository
	tokens    *pkg.TokenManager
	blacklist TokenBlacklist
	mailer    Mailer
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
	FirstName string
	LastName  string
}

// ProfileUpdate nil 表示不修改
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// NewUserService mailer 可以为 nil，此时不发欢迎邮件
func NewUserService(deps Deps, tokens *pkg.TokenManager, blacklist TokenBlacklist, mailer Mailer) *UserService {
	deps = deps.withDefaults()
	return &UserService{
		deps:      deps,
		repo:      &rdb.UserRepository{DB: deps.DB},
		tokens:    tokens,
		blacklist: blacklist,
		mailer:    mailer,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, *pkg.Pair, error) {
	fields := map[string][]string{}
	if in.Password != in.Password2 {
		fields["password"] = append(fields["password"], "Password fields didn't match.")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		fields["password"] = append(fields["password"], "This password is too short. It must contain at least 8 characters.")
	}
	exists, err := s.repo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		fields["username"] = []string{msgUserExists}
	}
	if len(fields) > 0 {
		return nil, nil, pkg.ValidationFields(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &model.User{
		Username:  in.Username,
		Password:  string(hash),
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, nil, pkg.Validation("username", msgUserExists)
		}
		return nil, nil, err
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.sendWelcome(ctx, user)
	publish(ctx, s.deps, Event{Type: EventUserRegistered, ActorID: user.ID})
	return user, pair, nil
}

const msgUserExists = "A user with that username already exists."

// sendWelcome 邮件失败不影响注册结果
func (s *UserService) sendWelcome(ctx context.Context, user *model.User) {
	if s.mailer == nil || user.Email == "" {
		return
	}
	if err := s.mailer.SendWelcome(ctx, user.Email, user.Username); err != nil {
		s.deps.Log.WarnContext(ctx, "sending welcome mail failed", "user_id", user.ID, "err", err)
	}
}

func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, *pkg.Pair, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, pkg.Unauthorized("Invalid credentials")
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, pkg.Unauthorized("Invalid credentials")
	}

	pair, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout 吊销调用者自己的 refresh token
func (s *UserService) Logout(ctx context.Context, callerID uint64, refreshToken string) error {
	if refreshToken == "" {
		return pkg.Validation("refresh", "This field is required.")
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil || claims.UserID != callerID {
		return pkg.Validation("refresh", "Token is invalid or expired")
	}

	ok, err := s.blacklist.Revoke(ctx, claims.ID, claims.TTL(s.tokens.Now()))
	if err != nil {
		return err
	}
	if !ok {
		return pkg.Validation("refresh", "Token is blacklisted")
	}
	return nil
}

// Refresh 轮换：旧 refresh 进黑名单，签发新的一对
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, pkg.Unauthorized("Token is invalid or expired")
	}

	ok, err := s.blacklist.Revoke(ctx, claims.ID, claims.TTL(s.tokens.Now()))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkg.Unauthorized("Token is blacklisted")
	}

	if _, err := s.repo.FindByID(ctx, claims.UserID); err != nil {
		if isNotFound(err) {
			return nil, pkg.Unauthorized("User not found")
		}
		return nil, err
	}
	return s.tokens.GeneratePair(claims.UserID)
}

func (s *UserService) Profile(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdate) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.FirstName != nil {
		fields["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		fields["last_name"] = *in.LastName
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if err := s.repo.UpdateProfile(ctx, user, fields); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}
