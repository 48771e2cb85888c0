// Package service exposes the document workflow over HTTP.
package service

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mosaicnetworks/waybill/src/aggregate"
	"github.com/mosaicnetworks/waybill/src/messages"
	"github.com/mosaicnetworks/waybill/src/registry"
	"github.com/mosaicnetworks/waybill/src/workflow"
	"github.com/sirupsen/logrus"
)

// Service serves the HTTP API of a waybill node.
type Service struct {
	bindAddress string
	registry    *registry.Registry
	engine      *workflow.Engine
	feed        *messages.Feed
	collector   *aggregate.Collector
	router      *mux.Router
	now         func() time.Time
	logger      *logrus.Entry
}

// NewService creates a Service and registers its routes.
func NewService(bindAddress string,
	engine *workflow.Engine,
	feed *messages.Feed,
	collector *aggregate.Collector,
	logger *logrus.Entry) *Service {

	service := Service{
		bindAddress: bindAddress,
		registry:    engine.Registry(),
		engine:      engine,
		feed:        feed,
		collector:   collector,
		router:      mux.NewRouter(),
		now:         time.Now,
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering waybill API handlers")

	s.router.Use(s.logging, cors)

	s.router.HandleFunc("/health", s.GetHealth).Methods("GET")
	s.router.HandleFunc("/nodes", s.GetNodes).Methods("GET")
	s.router.HandleFunc("/nodes/{sender}/send-to/{recipient}", s.SendDocument).Methods("POST")
	s.router.HandleFunc("/nodes/{node}/documents", s.GetDocuments).Methods("GET")
	s.router.HandleFunc("/nodes/{node}/documents/{docID}", s.GetDocument).Methods("GET")
	s.router.HandleFunc("/nodes/{node}/documents/{docID}/content", s.GetDocumentContent).Methods("GET")
	s.router.HandleFunc("/nodes/{node}/approve/{docID}", s.ApproveDocument).Methods("POST")
	s.router.HandleFunc("/nodes/{node}/reject/{docID}", s.RejectDocument).Methods("POST")
	s.router.HandleFunc("/nodes/{node}/messages", s.GetMessages).Methods("GET")
	s.router.HandleFunc("/documents/all", s.GetAllDocuments).Methods("GET")
	s.router.HandleFunc("/network/statistics", s.GetStatistics).Methods("GET")
	s.router.HandleFunc("/export/documents/{format:csv|json}", s.ExportDocuments).Methods("GET")
}

// Handler returns the router of the service.
func (s *Service) Handler() http.Handler {
	return s.router
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving waybill API")

	err := http.ListenAndServe(s.bindAddress, s.router)
	if err != nil {
		s.logger.Error(err)
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// statusWriter captures the response code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Service) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		entry := s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"uri":      r.RequestURI,
			"status":   sw.status,
			"duration": time.Since(start),
		})

		if sw.status >= http.StatusInternalServerError {
			entry.Error("api")
		} else {
			entry.Debug("api")
		}
	})
}
