package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"parkwatch/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenIssuer signs a session token for an authenticated email.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Plate    string `json:"plate"`
}

type Session struct {
	User  models.UserProfile `json:"user"`
	Token string             `json:"token"`
}

// bcrypt only reads the first 72 bytes; longer passwords are cut there so
// long passphrases still sign up and log in.
const maxPasswordBytes = 72

type Service struct {
	users   UserStore
	tokens  TokenIssuer
	log     *zap.Logger
	now     func() time.Time
	cost    int
	compare func(hash, password []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(users UserStore, tokens TokenIssuer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:   users,
		tokens:  tokens,
		log:     log,
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
		compare: bcrypt.CompareHashAndPassword,
	}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) error {
	if req.Email == "" || req.Password == "" || req.Name == "" || req.Plate == "" {
		return ErrMissingFields
	}

	_, err := s.users.FindByEmail(ctx, req.Email)
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, errUserNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordBytes(req.Password), s.cost)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:       req.Email,
		Password:    string(hashed),
		Name:        req.Name,
		Vehicle:     models.Vehicle{Plate: req.Plate},
		MemberSince: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.log.Info("user registered", zap.String("email", req.Email))
	return nil
}

// Login checks the credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, errUserNotFound) {
		// spend the same hashing time as a real check
		s.compare(s.placeholderHash(), passwordBytes(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.compare([]byte(user.Password), passwordBytes(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &Session{User: user.Profile()}
	if s.tokens != nil {
		if session.Token, err = s.tokens.Issue(user.Email); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (s *Service) placeholderHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("parkwatch-placeholder"), s.cost)
	})
	return s.dummyHash
}

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

func (s *Service) Profile(ctx context.Context, email string) (*models.UserProfile, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}
