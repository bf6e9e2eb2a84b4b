package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillmatch/docs" //this is required to generate swagger docs
	"skillmatch/internal/auth"
	"skillmatch/internal/mailer"
	"skillmatch/internal/notifications"
	"skillmatch/internal/ratelimiter"
	"skillmatch/internal/realtime"
	"skillmatch/internal/store"
	"skillmatch/internal/ticket"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	db            *pgxpool.Pool
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	tickets       *ticket.Generator
	hub           *realtime.Hub
	push          notifications.PushSender
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
	ticketSalt  string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.registerUserHandler)
			r.Post("/login", app.loginHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.With(app.AuthTokenMiddleware).Get("/me", app.currentUserHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/search", app.searchUsersHandler)
			r.Get("/nearby", app.nearbyUsersHandler)
			r.Put("/profile", app.updateProfileHandler)
			r.Post("/skill", app.addSkillHandler)
			r.Post("/profile-photo", app.uploadProfilePhotoHandler)
			r.Post("/push-token", app.savePushTokenHandler)
			r.Delete("/push-token", app.removePushTokenHandler)
			r.Get("/{userID}", app.getUserHandler)
		})

		r.Route("/venues", func(r chi.Router) {
			r.Get("/", app.listVenuesHandler)
			r.Get("/nearby", app.nearbyVenuesHandler)
			r.Get("/{venueID}", app.getVenueHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createVenueHandler)
				r.Put("/{venueID}", app.updateVenueHandler)
				r.Delete("/{venueID}", app.deleteVenueHandler)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createBookingHandler)
			r.Get("/user", app.getUserBookingsHandler)
			r.Get("/venue/{venueID}", app.getVenueBookingsHandler)
			r.Get("/{bookingID}", app.getBookingHandler)
			r.Put("/{bookingID}/status", app.updateBookingStatusHandler)
			r.Delete("/{bookingID}", app.cancelBookingHandler)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", app.listGamesHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createGameHandler)
				r.Get("/user/games", app.getUserGamesHandler)
				r.Get("/user/tickets", app.getUserTicketsHandler)
				r.Get("/tickets/{ticketID}", app.getTicketHandler)
				r.Post("/{gameID}/register", app.registerForGameHandler)
				r.Delete("/{gameID}/cancel-registration", app.cancelRegistrationHandler)
				r.Put("/{gameID}/status", app.updateGameStatusHandler)
			})

			r.Get("/{gameID}", app.getGameHandler)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", app.listJobsHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createJobHandler)
				r.Get("/user/posted", app.getPostedJobsHandler)
				r.Get("/user/applied", app.getAppliedJobsHandler)
				r.Post("/{jobID}/apply", app.applyForJobHandler)
				r.Put("/{jobID}/application-status", app.updateApplicationStatusHandler)
				r.Put("/{jobID}/close", app.closeJobHandler)
			})

			r.Get("/{jobID}", app.getJobHandler)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createReviewHandler)
			r.Get("/", app.getMyReviewsHandler)
			r.Get("/user/{userID}", app.getUserReviewsHandler)
			r.Put("/{reviewID}", app.updateReviewHandler)
			r.Delete("/{reviewID}", app.deleteReviewHandler)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/users", app.getChatUsersHandler)
			r.Get("/conversations", app.getConversationsHandler)
			r.Get("/messages/{userID}", app.getThreadHandler)
			r.Post("/messages", app.sendMessageHandler)
			r.Delete("/messages/{messageID}", app.deleteMessageHandler)
		})
	})

	r.Get("/ws", app.serveWsHandler)

	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
