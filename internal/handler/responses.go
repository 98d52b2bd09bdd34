package handler

import (
	"time"

	auditdomain "fintrack/backend/internal/audit/domain"
	"fintrack/backend/internal/auth/service"
	sessiondomain "fintrack/backend/internal/session/domain"
	userdomain "fintrack/backend/internal/user/domain"
)

type userResponse struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	IsVerified  bool       `json:"isVerified"`
	Region      string     `json:"region,omitempty"`
	City        string     `json:"city,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type sessionRefResponse struct {
	SessionID string `json:"sessionId"`
	DeviceID  string `json:"deviceId"`
}

type authResponse struct {
	User    userResponse       `json:"user"`
	Tokens  tokensResponse     `json:"tokens"`
	Session sessionRefResponse `json:"session"`
}

type sessionResponse struct {
	SessionID    string                   `json:"sessionId"`
	DeviceID     string                   `json:"deviceId"`
	Device       sessiondomain.DeviceInfo `json:"device"`
	Current      bool                     `json:"current"`
	CreatedAt    time.Time                `json:"createdAt"`
	LastActivity time.Time                `json:"lastActivity"`
	ExpiresAt    time.Time                `json:"expiresAt"`
}

type activityResponse struct {
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	CreatedAt time.Time `json:"createdAt"`
}

// toUserResponse strips credentials and security state from the user record.
func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        string(u.Role),
		IsVerified:  u.IsVerified,
		Region:      u.Region,
		City:        u.City,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func toAuthResponse(res *service.AuthResult) authResponse {
	return authResponse{
		User: toUserResponse(res.User),
		Tokens: tokensResponse{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			TokenType:    res.Tokens.TokenType,
			ExpiresIn:    res.Tokens.ExpiresIn,
		},
		Session: sessionRefResponse{
			SessionID: res.Session.SessionID,
			DeviceID:  res.Session.DeviceID,
		},
	}
}

func toActivityResponse(e *auditdomain.AuditLog) activityResponse {
	return activityResponse{
		Action:    e.Action,
		Resource:  e.Resource,
		IP:        e.IP,
		CreatedAt: e.CreatedAt,
	}
}

func toSessionResponse(s *sessiondomain.Session, current bool) sessionResponse {
	return sessionResponse{
		SessionID:    s.ID,
		DeviceID:     s.DeviceID,
		Device:       s.DeviceInfo,
		Current:      current,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivityAt,
		ExpiresAt:    s.ExpiresAt,
	}
}
