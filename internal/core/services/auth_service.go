package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"libracirc/internal/adapters/persistence/models"
	"libracirc/internal/adapters/persistence/repositories"
	"libracirc/internal/config"
	"libracirc/internal/core/domain"
	"libracirc/internal/pkg/jwt"
	"libracirc/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth session errors
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenRevoked         = errors.New("token revoked")
)

// AuthService handles accounts, sessions and credential checks
type AuthService struct {
	accountRepo      repositories.AccountRepository
	readerRepo       repositories.ReaderRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	accountRepo repositories.AccountRepository,
	readerRepo repositories.ReaderRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		accountRepo:      accountRepo,
		readerRepo:       readerRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Account      *models.AccountResponse `json:"account"`
	AccessToken  string                  `json:"access_token"`
	RefreshToken string                  `json:"refresh_token"`
}

// Register creates an account with its reader profile
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Validate password strength
	if !password.Validate(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidArgument, password.MinLength)
	}

	// 2. Check if email already registered
	exists, err := s.accountRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountAlreadyExists
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create account
	account := &models.Account{
		Email:    input.Email,
		Password: hashedPassword,
		Role:     models.RoleReader,
		IsActive: true,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	// 5. Create reader profile
	reader := &models.Reader{
		FullName:  input.FullName,
		Phone:     input.Phone,
		AccountID: account.ID,
	}
	if err := s.readerRepo.Create(ctx, reader); err != nil {
		return nil, err
	}

	// 6. Generate tokens
	tokens, err := s.generateTokens(account, reader.ID)
	if err != nil {
		return nil, err
	}

	// 7. Store refresh token
	if err := s.storeRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	// 8. Build response
	accountResponse := account.ToResponse()
	accountResponse.ReaderID = reader.ID
	accountResponse.FullName = reader.FullName

	log.Printf("✅ Reader registered: %s (ReaderID: %d)", account.Email, reader.ID)

	return &AuthResponse{
		Account:      accountResponse,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates an account
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find account by email
	account, err := s.accountRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if account is active
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	// 3. Verify password
	if !password.Verify(input.Password, account.Password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Look up reader profile (staff accounts may not have one)
	reader, _ := s.readerRepo.GetByAccountID(ctx, account.ID)

	// 5. Generate tokens
	var readerID uint
	if reader != nil {
		readerID = reader.ID
	}
	tokens, err := s.generateTokens(account, readerID)
	if err != nil {
		return nil, err
	}

	// 6. Store refresh token
	if err := s.storeRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	// 7. Build response
	accountResponse := account.ToResponse()
	if reader != nil {
		accountResponse.ReaderID = reader.ID
		accountResponse.FullName = reader.FullName
	}

	log.Printf("✅ Account logged in: %s", account.Email)

	return &AuthResponse{
		Account:      accountResponse,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	// 3. Find token in DB
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 4. Check if token is revoked
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}

	// 5. Check if token is expired
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 6. Get account
	account, err := s.accountRepo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	// 7. Check if account is active
	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	// 8. Revoke old refresh token (rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 9. Generate new tokens
	reader, _ := s.readerRepo.GetByAccountID(ctx, account.ID)
	var readerID uint
	if reader != nil {
		readerID = reader.ID
	}
	tokens, err := s.generateTokens(account, readerID)
	if err != nil {
		return nil, err
	}

	// 10. Store new refresh token
	if err := s.storeRefreshToken(ctx, account.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	// 11. Build response
	accountResponse := account.ToResponse()
	if reader != nil {
		accountResponse.ReaderID = reader.ID
		accountResponse.FullName = reader.FullName
	}

	log.Printf("✅ Token refreshed for account: %s", account.Email)

	return &AuthResponse{
		Account:      accountResponse,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ Account logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for an account
func (s *AuthService) LogoutAll(ctx context.Context, accountID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByAccountID(ctx, accountID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for account ID: %d", accountID)
	return nil
}

// PurgeExpiredTokens deletes refresh tokens past their expiry. Run
// nightly by the cron service; revoked rows inside their window stay
// for audit until they expire too.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) error {
	return s.refreshTokenRepo.DeleteExpired(ctx)
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetAccountByID gets an account by ID
func (s *AuthService) GetAccountByID(ctx context.Context, accountID uint) (*models.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// VerifyCredential checks a password against the stored hash for the
// account. Circulation operations re-verify the reader's password on
// every borrow, return, renewal and reservation change.
func (s *AuthService) VerifyCredential(ctx context.Context, accountID uint, secret string) (bool, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrAccountNotFound
		}
		return false, err
	}
	return password.Verify(secret, account.Password), nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(account *models.Account, readerID uint) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		account.ID,
		readerID,
		account.Email,
		account.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		account.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, accountID uint, refreshToken string) error {
	token := &models.RefreshToken{
		AccountID: accountID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
