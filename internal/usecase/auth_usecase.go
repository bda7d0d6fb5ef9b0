package usecase

import (
	"context"
	"errors"
	"strings"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/security"
)

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   *security.TokenIssuer
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens *security.TokenIssuer) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, tokens: tokens}
}

// SignIn answers 404 for an unknown e-mail and 400 for a wrong password.
func (u *authUsecase) SignIn(ctx context.Context, email, password string) (*domain.SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Validation(map[string]string{
			"email":    "Email: Campo obligatorio",
			"password": "Contraseña: Campo obligatorio",
		})
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado")
	}

	ok, err := security.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.BadRequest("Contraseña incorrecta")
	}

	token, expiresAt, err := u.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.SignInResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado")
	}
	return user, nil
}

func (u *authUsecase) Register(ctx context.Context, email, nombre, password, role string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, apperror.BadRequest("Email y contraseña de al menos 8 caracteres son obligatorios")
	}
	if role == "" {
		role = domain.RoleRecruiter
	}
	if role != domain.RoleAdmin && role != domain.RoleRecruiter {
		return nil, apperror.BadRequest("Rol inválido")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	user := &domain.User{Email: email, Nombre: nombre, Role: role, PasswordHash: hash}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, apperror.Conflict("El email ya está registrado")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
