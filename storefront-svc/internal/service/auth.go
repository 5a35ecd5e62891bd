package service

import (
	"strings"
	"sync"

	"huongque-storefront/storefront-svc/internal/domain"
	"huongque-storefront/storefront-svc/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	usersKey       = "users"
	currentUserKey = "currentUser"

	RoleCustomer      = "customer"
	MinPasswordLength = 6

	promptLogout = "Are you sure you want to log out?"
)

// registryLocks serializes read-modify-write cycles on an account list.
// The registry is shared by every visitor, so the lock is keyed by the
// stored key rather than held per AuthService.
var registryLocks sync.Map

type AuthService struct {
	session  Session
	registry *storage.KV
	cost     int
}

// NewAuthService keeps accounts in registry and the logged-in user in the
// session store. A nil registry keeps accounts per visitor.
func NewAuthService(session Session, registry *storage.KV) *AuthService {
	session = session.withDefaults()
	if registry == nil {
		registry = session.Store
	}
	return &AuthService{session: session, registry: registry, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *AuthService) WithHashCost(cost int) *AuthService {
	a.cost = cost
	return a
}

func (a *AuthService) Register(req domain.RegisterRequest) (*domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := validateRegistration(req); err != nil {
		a.session.Notify.Notify(err.Message, SeverityError)
		a.session.rejected("register")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		a.session.Logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	lock := a.registryLock()
	lock.Lock()
	defer lock.Unlock()

	users := a.users()
	for _, u := range users {
		if u.Email == req.Email {
			a.session.Notify.Notify("Email is already in use!", SeverityError)
			a.session.rejected("register")
			return nil, ErrEmailTaken
		}
	}

	record := domain.UserRecord{
		User: domain.User{
			ID:    uuid.NewString(),
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			Role:  RoleCustomer,
		},
		PasswordHash: string(hash),
		CreatedAt:    a.session.now(),
	}

	users = append(users, record)
	if err := a.registry.Save(usersKey, users); err != nil {
		a.session.Notify.Notify("Something went wrong, please try again!", SeverityError)
		return nil, err
	}

	a.session.Notify.Notify("Registration successful! Please log in.", SeveritySuccess)
	user := record.User
	return &user, nil
}

func validateRegistration(req domain.RegisterRequest) *ValidationError {
	switch {
	case req.Name == "":
		return invalid("name", "Please enter your name")
	case !ValidEmail(req.Email):
		return invalid("email", "Invalid email address")
	case !ValidPhone(req.Phone):
		return invalid("phone", "Invalid phone number")
	case len(req.Password) < MinPasswordLength:
		return invalid("password", "Password must be at least 6 characters")
	case req.Password != req.ConfirmPassword:
		return invalid("confirmPassword", "Passwords do not match")
	}
	return nil
}

// FindUserByCredentials returns the matching account or nil.
func (a *AuthService) FindUserByCredentials(email, password string) *domain.User {
	email = normalizeEmail(email)
	for _, record := range a.users() {
		if record.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
			return nil
		}
		user := record.User
		return &user
	}
	return nil
}

// Login checks the credentials and makes the account the session user.
func (a *AuthService) Login(email, password string) (*domain.User, error) {
	if !ValidEmail(email) {
		a.session.Notify.Notify("Invalid email address", SeverityError)
		return nil, invalid("email", "Invalid email address")
	}
	if len(password) < MinPasswordLength {
		a.session.Notify.Notify("Password must be at least 6 characters", SeverityError)
		return nil, invalid("password", "Password must be at least 6 characters")
	}

	user := a.FindUserByCredentials(email, password)
	if user == nil {
		a.session.Notify.Notify("Incorrect email or password!", SeverityError)
		a.session.rejected("login")
		return nil, ErrInvalidCredentials
	}

	if err := a.session.Store.Save(currentUserKey, user); err != nil {
		a.session.Notify.Notify("Something went wrong, please try again!", SeverityError)
		return nil, err
	}

	a.session.Notify.Notify("Logged in successfully!", SeveritySuccess)
	return user, nil
}

// Logout clears the session user once the visitor confirms.
func (a *AuthService) Logout() bool {
	if !a.session.Confirm.Confirm(promptLogout) {
		return false
	}
	a.session.Store.Remove(currentUserKey)
	a.session.Notify.Notify("Logged out", SeverityInfo)
	return true
}

// CurrentSession is the logged-in user, or nil.
func (a *AuthService) CurrentSession() *domain.User {
	user := storage.Load[*domain.User](a.session.Store, currentUserKey, nil)
	if user == nil || user.ID == "" {
		return nil
	}
	return user
}

func (a *AuthService) registryLock() *sync.Mutex {
	lock, _ := registryLocks.LoadOrStore(a.registry.Key(usersKey), &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (a *AuthService) users() []domain.UserRecord {
	return storage.Load(a.registry, usersKey, []domain.UserRecord{})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
