package auth

import (
	"gridreserve-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionPartyShape is the object stored in session and returned by /me.
type SessionPartyShape struct {
	PartyID      string  `json:"party_id"`
	Fullname     string  `json:"fullname"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	AggregatorID *string `json:"aggregator_id"`
}

// PartyFinder abstracts party lookup by email+password (GORM in production,
// test doubles in tests).
type PartyFinder interface {
	FindByEmailAndPassword(email, password string) (*domain.Party, error)
}

// GormPartyFinder implements PartyFinder using GORM and bcrypt.
type GormPartyFinder struct{ DB *gorm.DB }

func (g *GormPartyFinder) FindByEmailAndPassword(email, password string) (*domain.Party, error) {
	return LoginParty(g.DB, LoginInput{Email: email, Password: password})
}

// LoginParty finds a party by email and verifies the password.
func LoginParty(db *gorm.DB, input LoginInput) (*domain.Party, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var p domain.Party
	if err := db.Where("email = ?", input.Email).First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidEmail
		}
		return nil, err
	}
	if p.PasswordHash == "" {
		return nil, ErrInvalidEmail
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &p, nil
}

// HashPassword hashes a plaintext password for storage (seed/bootstrap).
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyParty validates the session party and returns the shape for /me.
func VerifyParty(sessionParty interface{}) (*SessionPartyShape, error) {
	if sessionParty == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionParty.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	partyID, _ := m["party_id"].(string)
	if partyID == "" {
		return nil, ErrNotAuthenticated
	}
	out := &SessionPartyShape{
		PartyID:  partyID,
		Fullname: str(m["fullname"]),
		Email:    str(m["email"]),
		Role:     str(m["role"]),
	}
	if a, ok := m["aggregator_id"]; ok && a != nil {
		if s, ok := a.(string); ok {
			out.AggregatorID = &s
		}
	}
	return out, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
