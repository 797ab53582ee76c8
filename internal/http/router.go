package httpapi

import (
	"context"
	"net/http"
	"sort"
	"time"

	"hostel-portal/internal/domain"

	"go.uber.org/zap"
)

// Router uses the standard library ServeMux with method patterns.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RegisterHealth serves GET /healthz; any failing check gives 503.
func (r *Router) RegisterHealth(checks map[string]HealthCheck) {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	r.Handle("GET /healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{}
		healthy := true
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				r.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}
		if !healthy {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "service degraded", "checks": status})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "checks": status})
	})
}

func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("POST /api/admin/register", h.RegisterAdmin)
	r.Handle("POST /api/admin/register/verify-otp", h.VerifyAdminRegistration)
	r.Handle("POST /api/admin/login", h.AdminLogin)
	r.Handle("POST /api/admin/login/send-otp", h.SendLoginOTP)
	r.Handle("POST /api/admin/login/verify-otp-login", h.VerifyLoginOTP)

	r.Handle("POST /api/student/register", h.RegisterStudent)
	r.Handle("POST /api/student/login", h.StudentLogin)

	r.Handle("POST /api/auth/refresh", h.Refresh)
}

func (r *Router) RegisterStudentRoutes(auth *Authenticator, apps *ApplicationHandler, complaints *ComplaintHandler) {
	student := auth.RequireRole(domain.RoleStudent)
	r.Handle("GET /api/student/profile/{id}", auth.RequireRole(domain.RoleStudent, domain.RoleAdmin)(apps.Profile))
	r.Handle("POST /api/student/complaints", student(complaints.File))
	r.Handle("GET /api/student/complaints", student(complaints.ListMine))
}

// RegisterHostelRoutes mounts the admin console under /api/hostel.
func (r *Router) RegisterHostelRoutes(auth *Authenticator, apps *ApplicationHandler, rooms *RoomHandler, fees *FeeHandler, complaints *ComplaintHandler) {
	admin := auth.RequireRole(domain.RoleAdmin)

	r.Handle("GET /api/hostel/applications", admin(apps.List))
	r.Handle("GET /api/hostel/applications/{id}", admin(apps.Get))
	r.Handle("PATCH /api/hostel/applications/{id}", admin(apps.UpdateStatus))
	r.Handle("DELETE /api/hostel/applications/{id}", admin(apps.Delete))
	r.Handle("PATCH /api/hostel/applications/{id}/allot-room", admin(apps.AllotRoom))
	r.Handle("DELETE /api/hostel/applications/{id}/allot-room", admin(apps.ReleaseRoom))
	r.Handle("DELETE /api/hostel/students/{id}", admin(apps.RemoveStudent))
	r.Handle("GET /api/hostel/allotments/history", admin(apps.History))

	r.Handle("GET /api/hostel/rooms", admin(rooms.List))
	r.Handle("POST /api/hostel/rooms", admin(rooms.Create))
	r.Handle("GET /api/hostel/rooms/export", admin(rooms.Export))
	r.Handle("GET /api/hostel/rooms/audit", admin(apps.Audit))
	r.Handle("PATCH /api/hostel/rooms/{id}", admin(rooms.Update))
	r.Handle("DELETE /api/hostel/rooms/{id}", admin(rooms.Delete))

	r.Handle("GET /api/hostel/fees", admin(fees.List))
	r.Handle("GET /api/hostel/fees/export", admin(fees.Export))
	r.Handle("GET /api/hostel/fees/{appNo}", admin(fees.Get))
	r.Handle("PATCH /api/hostel/fees/{appNo}", admin(fees.Update))

	r.Handle("GET /api/hostel/complaints", admin(complaints.ListAll))
	r.Handle("PATCH /api/hostel/complaints/{id}/status", admin(complaints.UpdateStatus))
}

func (r *Router) RegisterNoticeRoutes(auth *Authenticator, notices *NoticeHandler) {
	admin := auth.RequireRole(domain.RoleAdmin)
	r.Handle("GET /api/notices", notices.List)
	r.Handle("POST /api/notices", admin(notices.Create))
	r.Handle("PATCH /api/notices/{id}", admin(notices.Update))
	r.Handle("DELETE /api/notices/{id}", admin(notices.Delete))
}

// RegisterFallback answers unknown routes with a JSON 404.
func (r *Router) RegisterFallback() {
	r.Handle("/", func(w http.ResponseWriter, req *http.Request) {
		writeMessage(w, http.StatusNotFound, "no route for "+req.Method+" "+req.URL.Path)
	})
}

// Options configures the middleware stack around the router.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// Wrap applies the standard middleware: request id, access log, panic
// recovery, CORS and the request timeout.
func Wrap(h http.Handler, opts Options, logger *zap.Logger) http.Handler {
	return Chain(h,
		RequestID(),
		AccessLog(logger),
		Recover(logger),
		CORS(opts.CORSOrigins),
		Timeout(opts.RequestTimeout),
	)
}
