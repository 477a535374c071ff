package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/appregistry/internal/pkginfo"
	"github.com/louisbranch/appregistry/internal/platform/admingrant"
	apperrors "github.com/louisbranch/appregistry/internal/platform/errors"
	"github.com/louisbranch/appregistry/internal/platform/requestctx"
	"github.com/louisbranch/appregistry/internal/registry/hostbuild"
	"github.com/louisbranch/appregistry/internal/storage"
	"github.com/louisbranch/appregistry/internal/telemetry"
)

const tracerName = "github.com/louisbranch/appregistry/internal/api/httpapi"

// Server hosts the registry query API handlers.
type Server struct {
	packages storage.PackageStore
	host     *hostbuild.Registry
	grants   admingrant.Config
	emitter  *telemetry.Emitter
	tracer   trace.Tracer
	clock    func() time.Time
	newID    func() string
}

// NewServer creates a Server with default dependencies.
func NewServer(packages storage.PackageStore, host *hostbuild.Registry, grants admingrant.Config, emitter *telemetry.Emitter) *Server {
	return &Server{
		packages: packages,
		host:     host,
		grants:   grants,
		emitter:  emitter,
		tracer:   otel.Tracer(tracerName),
		clock:    time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// RegisterRoutes attaches the API handlers to mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /v1/self", s.trace("registry.self", s.handleSelf))
	mux.HandleFunc("GET /v1/packages", s.trace("registry.list", s.handleListPackages))
	mux.HandleFunc("GET /v1/packages/{name}", s.trace("registry.get", s.handleGetPackage))
	mux.HandleFunc("GET /v1/packages/{name}/certificate-digest", s.trace("registry.digest", s.handleCertificateDigest))
	mux.HandleFunc("PUT /v1/packages/{name}", s.trace("registry.put", s.handlePutPackage))
	mux.HandleFunc("DELETE /v1/packages/{name}", s.trace("registry.delete", s.handleDeletePackage))
}

// trace assigns a request ID, opens a span, and echoes the ID back to the
// caller before delegating to handler.
func (s *Server) trace(operation string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := s.newID()
		ctx := requestctx.WithRequestID(r.Context(), requestID)
		ctx, span := s.tracer.Start(ctx, operation, trace.WithAttributes(
			attribute.String("registry.request_id", requestID),
		))
		defer span.End()

		w.Header().Set("X-Request-Id", requestID)
		handler(w, r.WithContext(ctx))
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSelf(w http.ResponseWriter, r *http.Request) {
	self := s.host.Self()
	if self == nil {
		s.writeError(w, apperrors.New(apperrors.CodeNotFound, "host build info is unavailable"))
		return
	}
	s.emitRead(r, "registry.api.self", self.PackageName)
	writeJSON(w, http.StatusOK, packageToView(self))
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	limit, offset := storage.NormalizeListRange(queryInt(r, "limit", 0), queryInt(r, "offset", 0))

	infos, err := s.packages.ListPackages(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view := packageListView{Packages: []packageView{}, Limit: limit, Offset: offset}
	for i := range infos {
		view.Packages = append(view.Packages, packageToView(&infos[i]))
	}
	s.emitRead(r, "registry.api.list", "")
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.writeError(w, apperrors.New(apperrors.CodePackageNameEmpty, "package name is required"))
		return
	}

	var query pkginfo.Query
	if r.URL.Query().Get("signatures") == "1" {
		query |= pkginfo.QuerySignatures
	}

	info, err := s.packages.PackageInfo(r.Context(), name, query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.emitRead(r, "registry.api.read", name)
	writeJSON(w, http.StatusOK, packageToView(info))
}

func (s *Server) handleCertificateDigest(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.writeError(w, apperrors.New(apperrors.CodePackageNameEmpty, "package name is required"))
		return
	}

	app := pkginfo.NewApp(s.packages, name)
	digest, ok := pkginfo.SigningCertificateSHA256Digest(r.Context(), app)
	if !ok {
		// Distinguish a missing package from a package without signatures.
		if _, err := s.packages.PackageInfo(r.Context(), name, 0); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeError(w, apperrors.WithMetadata(
			apperrors.CodePackageSignatureMissing,
			"package has no signing certificate",
			map[string]string{"Package": name},
		))
		return
	}
	s.emitRead(r, "registry.api.digest", name)
	writeJSON(w, http.StatusOK, digestView{Name: name, Algorithm: "SHA-256", Digest: digest})
}

func (s *Server) handlePutPackage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.writeError(w, apperrors.New(apperrors.CodePackageNameEmpty, "package name is required"))
		return
	}
	claims, err := s.authorize(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ctx := requestctx.WithSubject(r.Context(), claims.Subject)

	var request putPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.CodeRequestInvalid, "decode package body", err))
		return
	}
	info, err := request.toInfo(name, s.clock().UTC())
	if err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.CodeRequestInvalid, "decode package signatures", err))
		return
	}

	if err := s.packages.PutPackage(ctx, info); err != nil {
		s.writeError(w, err)
		return
	}
	s.emitEvent(ctx, "registry.api.put", name, claims.Subject)
	writeJSON(w, http.StatusOK, packageToView(&info))
}

func (s *Server) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		s.writeError(w, apperrors.New(apperrors.CodePackageNameEmpty, "package name is required"))
		return
	}
	claims, err := s.authorize(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ctx := requestctx.WithSubject(r.Context(), claims.Subject)

	if err := s.packages.DeletePackage(ctx, name); err != nil {
		s.writeError(w, err)
		return
	}
	s.emitEvent(ctx, "registry.api.delete", name, claims.Subject)
	w.WriteHeader(http.StatusNoContent)
}

// authorize validates the bearer token on a mutating request.
func (s *Server) authorize(r *http.Request) (admingrant.Claims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token := ""
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		token = strings.TrimSpace(rest)
	}
	return admingrant.RequireScope(token, s.grants, admingrant.ScopePackagesWrite)
}

func (s *Server) emitRead(r *http.Request, event, packageName string) {
	s.emitEvent(r.Context(), event, packageName, "")
}

// emitEvent records one telemetry row; failures are logged, never surfaced.
func (s *Server) emitEvent(ctx context.Context, event, packageName, subject string) {
	evt := storage.TelemetryEvent{
		EventName:   event,
		Severity:    string(telemetry.SeverityInfo),
		PackageName: packageName,
		RequestID:   requestctx.RequestIDFromContext(ctx),
	}
	if subject != "" {
		evt.Attributes = map[string]any{"subject": subject}
	}
	if err := s.emitter.Emit(ctx, evt); err != nil {
		log.Printf("telemetry emit %s: %v", event, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps domain and storage errors onto the API error shape.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		writeJSON(w, domainErr.Code.HTTPStatus(), errorResponse{
			Error:            string(domainErr.Code),
			ErrorDescription: domainErr.Message,
			Metadata:         domainErr.Metadata,
		})
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:            string(apperrors.CodeNotFound),
			ErrorDescription: "package not found",
		})
		return
	}
	log.Printf("internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:            string(apperrors.CodeUnknown),
		ErrorDescription: "internal error",
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
