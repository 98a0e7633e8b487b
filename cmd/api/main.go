package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jeng2004/t-double-project-sub000/config"
	"github.com/Jeng2004/t-double-project-sub000/internal/mailer"
	"github.com/Jeng2004/t-double-project-sub000/internal/payment"
	"github.com/Jeng2004/t-double-project-sub000/internal/repository"
	"github.com/Jeng2004/t-double-project-sub000/internal/service"
	"github.com/Jeng2004/t-double-project-sub000/internal/token"
	transport "github.com/Jeng2004/t-double-project-sub000/internal/transport/http"
	"github.com/Jeng2004/t-double-project-sub000/pkg/database"
	"github.com/Jeng2004/t-double-project-sub000/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)
	txm := repository.NewTxManager(db)

	gate := payment.NewStripeGate(payment.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	})
	sender := mailer.NewEmailSender(mailer.Config{
		SMTPHost:     cfg.SMTP.Host,
		SMTPPort:     cfg.SMTP.Port,
		SMTPUser:     cfg.SMTP.User,
		SMTPPassword: cfg.SMTP.Password,
		SMTPFrom:     cfg.SMTP.From,
		TMPLDir:      cfg.TMPLDir,
	})
	tokens := token.NewManager(cfg.JWTSecret, 24*time.Hour)

	orders := service.NewOrderService(repos, txm, gate, sender, log)
	specials := service.NewSpecialOrderService(repos, txm, gate, sender, log)
	returns := service.NewReturnService(repos, txm, gate, sender, cfg.ReturnWindowDays, log)
	auth := service.NewAuthService(repos, tokens, sender, log)
	cart := service.NewCartService(repos)
	catalog := service.NewCatalogService(repos, txm)

	r := transport.Router(transport.Handlers{
		Auth:     transport.NewAuthHandler(auth, log),
		Products: transport.NewProductHandler(catalog, log),
		Cart:     transport.NewCartHandler(cart, log),
		Orders:   transport.NewOrderHandler(orders, log),
		Returns:  transport.NewReturnHandler(returns, cfg.UploadDir, log),
		Specials: transport.NewSpecialOrderHandler(specials, log),
		Webhooks: transport.NewWebhookHandler(gate, orders, specials, log),
	}, tokens, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
