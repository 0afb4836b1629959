package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"contasai/web/config"
	"contasai/web/controller"
	"contasai/web/handlers"
	"contasai/web/middleware"
	"contasai/web/services"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.New()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Backend clients
	accountsAPI := services.NewAccountsClient(cfg.AccountsAPIURL, cfg.RequestTimeout, logger)
	predictionAPI := services.NewPredictionClient(cfg.PredictionAPIURL, cfg.RequestTimeout, logger)

	// Controllers
	accountList := controller.NewAccountList(accountsAPI, predictionAPI, cfg.PageSize, controller.AllFeatures(), logger)
	reminderBrowser := controller.NewReminderBrowser(predictionAPI, cfg.RemindersPageSize, logger)

	accountsHandler := handlers.NewAccountsHandler(accountList, logger)
	remindersHandler := handlers.NewRemindersHandler(reminderBrowser, logger)

	// Create router
	r := mux.NewRouter()
	r.Use(middleware.EnableCORS)
	r.Use(middleware.RequestLogger(logger))

	r.HandleFunc("/health", handlers.HealthCheck).Methods("GET", "OPTIONS")

	api := r.PathPrefix("/api/view").Subrouter()
	api.HandleFunc("/accounts", accountsHandler.GetView).Methods("GET")
	api.HandleFunc("/accounts", accountsHandler.Create).Methods("POST")
	api.HandleFunc("/accounts/month", accountsHandler.SelectMonth).Methods("POST")
	api.HandleFunc("/accounts/search", accountsHandler.Search).Methods("POST")
	api.HandleFunc("/accounts/page", accountsHandler.Page).Methods("POST")
	api.HandleFunc("/accounts/predict", accountsHandler.PredictSubmit).Methods("POST")
	api.HandleFunc("/accounts/predict/close", accountsHandler.PredictClose).Methods("POST")
	api.HandleFunc("/accounts/{id}", accountsHandler.Edit).Methods("PATCH")
	api.HandleFunc("/accounts/{id}", accountsHandler.Delete).Methods("DELETE")
	api.HandleFunc("/accounts/{id}/predict/open", accountsHandler.PredictOpen).Methods("POST")

	api.HandleFunc("/reminders", remindersHandler.GetView).Methods("GET")
	api.HandleFunc("/reminders/page", remindersHandler.Page).Methods("POST")
	api.HandleFunc("/reminders/select", remindersHandler.Select).Methods("POST")

	srv := &http.Server{
		Handler:      r,
		Addr:         ":" + cfg.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	logger.Infof("Starting server on port %s...", cfg.Port)
	logger.Fatal(srv.ListenAndServe())
}
