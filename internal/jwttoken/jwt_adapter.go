package jwttoken

import "academy/internal/platform/middleware"

// MiddlewareAdapter adapts JWTService to the middleware validator interface.
type MiddlewareAdapter struct {
	service *JWTService
}

var _ middleware.JWTValidator = (*MiddlewareAdapter)(nil)

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{AdminID: claims.AdminID, Role: claims.Role}, nil
}
