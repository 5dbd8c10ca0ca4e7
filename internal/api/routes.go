package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"marca-checker/internal/check"
	"marca-checker/internal/match"
	"marca-checker/internal/store"
)

const serviceName = "marca-checker"

var errLogDisabled = errors.New("registro de consultas deshabilitado")

// Config defines server dependencies.
type Config struct {
	Checker        *check.Checker
	Store          *store.Database
	Notifier       *ConsultationNotifier
	AllowedOrigins []string
	Models         []string
	CacheBackend   string
}

// Server wires HTTP handlers with the consultation pipeline and its log.
type Server struct {
	checker        *check.Checker
	db             *store.Database
	notifier       *ConsultationNotifier
	allowedOrigins []string
	models         []string
	cacheBackend   string
}

// NewServer constructs the API server. Store may be nil, which disables the history endpoints.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Checker == nil {
		return nil, errors.New("checker required")
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NewConsultationNotifier(cfg.Checker.AIEnabled())
	}
	backend := strings.TrimSpace(cfg.CacheBackend)
	if backend == "" {
		backend = "none"
	}
	return &Server{
		checker:        cfg.Checker,
		db:             cfg.Store,
		notifier:       notifier,
		allowedOrigins: cfg.AllowedOrigins,
		models:         append([]string(nil), cfg.Models...),
		cacheBackend:   backend,
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
		corsCfg.AllowCredentials = true
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.POST("/consultar", s.handleConsult)
	r.GET("/health", s.handleHealth)
	r.GET("/diagnostico/:marca", s.handleDiagnose)

	api := r.Group("/api")
	{
		api.GET("/config", s.handleConfig)
		api.GET("/consultas", s.handleListConsultations)
		api.GET("/consultas/stream", s.handleConsultationStream)
		api.GET("/consultas/:id", s.handleGetConsultation)
	}

	return r, nil
}

func (s *Server) handleConsult(c *gin.Context) {
	var req ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, match.ErrMissingFields)
		return
	}
	query, err := match.NormalizeQuery(req.Marca, req.Descripcion)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}

	result := s.checker.Check(c.Request.Context(), query)
	c.JSON(http.StatusOK, result.Analysis)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		Service:      serviceName,
		AIConfigured: s.checker.AIEnabled(),
	})
}

func (s *Server) handleDiagnose(c *gin.Context) {
	brand := match.NormalizeBrand(c.Param("marca"))
	if brand == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("marca es obligatoria"))
		return
	}
	diag := s.checker.Diagnose(c.Request.Context(), brand)
	c.JSON(http.StatusOK, DiagnosisResponse{
		Marca:      diag.Brand,
		StatusIMPI: string(diag.Outcome),
		Timestamp:  diag.Timestamp,
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	resp := ConfigResponse{
		Models:          s.models,
		CacheBackend:    s.cacheBackend,
		FallbackEnabled: s.checker.FallbackEnabled(),
		LogEnabled:      s.db != nil,
		Subscribers:     s.notifier.Subscribers(),
	}
	if s.db != nil {
		counts, err := s.db.CountByStatus()
		if err != nil {
			s.renderError(c, http.StatusInternalServerError, err)
			return
		}
		resp.StatusCounts = counts
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListConsultations(c *gin.Context) {
	if s.db == nil {
		s.renderError(c, http.StatusServiceUnavailable, errLogDisabled)
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 200 {
		pageSize = 200
	}

	rows, total, err := s.db.ListConsultations(page*pageSize, pageSize)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]ConsultationDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	c.JSON(http.StatusOK, ConsultationsResponse{Items: dtos, Total: total})
}

func (s *Server) handleGetConsultation(c *gin.Context) {
	if s.db == nil {
		s.renderError(c, http.StatusServiceUnavailable, errLogDisabled)
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	row, err := s.db.GetConsultation(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.renderError(c, http.StatusNotFound, errors.New("consulta "+id+" no encontrada"))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	c.JSON(http.StatusOK, FromModel(*row))
}

func (s *Server) handleConsultationStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("consultation websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("consultation websocket closed")
			} else {
				logrus.WithError(err).Warn("consultation websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
