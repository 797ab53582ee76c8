package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/service"

	"go.uber.org/zap"
)

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type adminRegisterRequest struct {
	AdminID  string `json:"adminId" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,digits"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type studentRegisterRequest struct {
	Name              string  `json:"name" validate:"required,min=3,max=100"`
	ApplicationNumber string  `json:"applicationNumber" validate:"required,min=12,max=64,pathsafe"`
	Email             string  `json:"email" validate:"required,email"`
	DOB               string  `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Year              flexInt `json:"year" validate:"min=1,max=6"`
	Branch            string  `json:"branch" validate:"required,max=100,alphaspace"`
	Gender            string  `json:"gender" validate:"required,oneof=Male Female Other"`
	Distance          flexInt `json:"distance" validate:"gte=0"`
	Rank              flexInt `json:"rank" validate:"min=1"`
	CounselingRound   flexInt `json:"counselingRound" validate:"gte=0,max=20"`
	Password          string  `json:"password" validate:"required,min=6,max=72"`
}

type studentLoginRequest struct {
	ApplicationNumber string `json:"applicationNumber" validate:"required"`
	Password          string `json:"password" validate:"required"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Message   string              `json:"message"`
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	Admin     *domain.Admin       `json:"admin,omitempty"`
	Student   *domain.Application `json:"student,omitempty"`
}

func newSessionResponse(msg string, s *service.Session) sessionResponse {
	return sessionResponse{Message: msg, Token: s.Token, ExpiresAt: s.ExpiresAt, Admin: s.Admin, Student: s.Student}
}

// decode reads and validates a JSON body, writing the 400 itself.
func decode(w http.ResponseWriter, r *http.Request, logger *zap.Logger, out any) bool {
	if err := readBodyJSON(r, maxBodyBytes, out); err != nil {
		writeError(w, r, logger, err)
		return false
	}
	if err := validateStruct(out); err != nil {
		writeError(w, r, logger, err)
		return false
	}
	return true
}

func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminRegisterRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	err := h.auth.RegisterAdmin(r.Context(), service.RegisterAdminRequest{
		AdminID:  req.AdminID,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusAccepted, fmt.Sprintf("OTP sent to %s. Enter it to complete registration.", req.Email))
}

func (h *AuthHandler) VerifyAdminRegistration(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	admin, err := h.auth.VerifyAdminRegistration(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Admin registered successfully",
		"admin":   admin,
	})
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	sess, err := h.auth.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("Login successful", sess))
}

func (h *AuthHandler) SendLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	if err := h.auth.SendLoginOTP(r.Context(), req.Email); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "OTP sent to "+req.Email)
}

func (h *AuthHandler) VerifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	sess, err := h.auth.VerifyLoginOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("Login successful", sess))
}

func (h *AuthHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRegisterRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	a, err := h.auth.RegisterStudent(r.Context(), service.RegisterStudentRequest{
		Name:              req.Name,
		ApplicationNumber: req.ApplicationNumber,
		Email:             req.Email,
		DOB:               req.DOB,
		Year:              int(req.Year),
		Branch:            req.Branch,
		Gender:            req.Gender,
		Distance:          int(req.Distance),
		Rank:              int(req.Rank),
		CounselingRound:   int(req.CounselingRound),
		Password:          req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"student": a,
	})
}

func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req studentLoginRequest
	if !decode(w, r, h.logger, &req) {
		return
	}
	sess, err := h.auth.StudentLogin(r.Context(), req.ApplicationNumber, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("Login successful", sess))
}

// Refresh takes the token from the Authorization header, or from the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		var req refreshRequest
		if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		token = req.Token
	}
	sess, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("Session refreshed", sess))
}
