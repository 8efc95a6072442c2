package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mthomps/restock/internal/backup"
	"github.com/mthomps/restock/internal/config"
	"github.com/mthomps/restock/internal/handler"
	"github.com/mthomps/restock/internal/middleware"
	"github.com/mthomps/restock/internal/notify"
	"github.com/mthomps/restock/internal/reminder"
	"github.com/mthomps/restock/internal/store"
	"github.com/mthomps/restock/internal/sweep"
	ws "github.com/mthomps/restock/internal/websocket"
)

type Server struct {
	db          *sql.DB
	cfg         *config.Config
	hub         *ws.Hub
	itemH       *handler.ItemHandler
	reminderH   *handler.ReminderHandler
	pushH       *handler.PushHandler
	analyticsH  *handler.AnalyticsHandler
	suggestH    *handler.SuggestHandler
	engine      *reminder.Engine
	sweeper     *sweep.Checker
	dispatcher  *notify.Dispatcher
	snapshotter *backup.Snapshotter
	queue       *store.NotificationStore
	logger      *slog.Logger

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	itemStore := store.NewItemStore(db)
	purchaseStore := store.NewPurchaseStore(db)
	reminderStore := store.NewReminderStore(db)
	notifStore := store.NewNotificationStore(db)
	sweepStore := store.NewSweepStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)
	analyticsStore := store.NewAnalyticsStore(db)

	pushLogger := logger.With("component", "push")
	pushSvc := notify.NewService(notify.Config{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber:      cfg.Push.Subscriber,
	})
	perm := notify.NewPermission(pushStore, settingsStore)

	engine := reminder.NewEngine(itemStore, purchaseStore, reminderStore, notifStore, perm, logger.With("component", "reminder"))
	sweeper := sweep.NewChecker(itemStore, sweepStore, notifStore, logger.With("component", "sweep"))
	dispatcher := notify.NewDispatcher(pushSvc, notifStore, reminderStore, pushStore, cfg.Push.DispatchInterval, pushLogger)

	snapshotter := backup.NewSnapshotter(backup.Config{
		Endpoint:   cfg.Backup.Endpoint,
		Bucket:     cfg.Backup.Bucket,
		Region:     cfg.Backup.Region,
		AccessKey:  cfg.Backup.AccessKey,
		SecretKey:  cfg.Backup.SecretKey,
		Passphrase: cfg.Backup.Passphrase,
		DBPath:     cfg.DB.Path,
		Interval:   cfg.Backup.Interval,
	}, db, logger.With("component", "backup"))

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		itemH:       handler.NewItemHandler(itemStore, purchaseStore, engine, hub, logger.With("component", "item")),
		reminderH:   handler.NewReminderHandler(engine, reminderStore, notifStore, hub, logger.With("component", "reminder_handler")),
		pushH:       handler.NewPushHandler(pushSvc, pushStore, settingsStore, notifStore, logger.With("component", "push_handler")),
		analyticsH:  handler.NewAnalyticsHandler(analyticsStore, logger.With("component", "analytics")),
		suggestH:    handler.NewSuggestHandler(itemStore, logger.With("component", "suggest")),
		engine:      engine,
		sweeper:     sweeper,
		dispatcher:  dispatcher,
		snapshotter: snapshotter,
		queue:       notifStore,
		logger:      logger,
	}
}

// Start brings up the background machinery in a fixed order: reconcile
// reminders against purchase history first, then start the dispatcher, then
// sweep for unpurchased items. The sweep must not run before reconciliation
// has settled the queue.
func (s *Server) Start(ctx context.Context) {
	if err := s.engine.ItemDeleted(); err != nil {
		s.logger.Warn("startup prune failed", "error", err)
	}
	if err := s.engine.Reconcile(); err != nil {
		s.logger.Warn("startup reconcile failed", "error", err)
	}

	s.dispatcher.Start(ctx)
	s.snapshotter.Start(ctx)

	if s.cfg.Sweep.Enabled {
		s.startSweepLoop(ctx)
	}

	if err := s.queue.CleanupFired(time.Now().AddDate(0, 0, -30)); err != nil {
		s.logger.Warn("cleanup fired notifications failed", "error", err)
	}
}

func (s *Server) startSweepLoop(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.sweepCancel = cancel
	s.sweepDone = make(chan struct{})

	go func() {
		defer close(s.sweepDone)

		if err := s.sweeper.Run(ctx, time.Now()); err != nil {
			s.logger.Error("sweep failed", "error", err)
		}

		ticker := time.NewTicker(s.cfg.Sweep.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.sweeper.Run(ctx, time.Now()); err != nil {
					s.logger.Error("sweep failed", "error", err)
				}
			}
		}
	}()
}

// Stop shuts down the background loops and waits for them to exit.
func (s *Server) Stop() {
	if s.sweepCancel != nil {
		s.sweepCancel()
		<-s.sweepDone
	}
	s.dispatcher.Stop()
	s.snapshotter.Stop()
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Item API routes
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/purchase", s.itemH.Purchase)
	mux.HandleFunc("POST /api/items/purchase", s.itemH.PurchaseBulk)
	mux.HandleFunc("POST /api/items/move", s.itemH.Move)
	mux.HandleFunc("POST /api/items/delete", s.itemH.DeleteBulk)
	mux.HandleFunc("GET /api/items/unpurchased", s.itemH.ListUnpurchased)
	mux.HandleFunc("GET /api/dates", s.itemH.ListDates)
	mux.HandleFunc("GET /api/shops", s.itemH.ListShops)
	mux.HandleFunc("GET /api/purchases", s.itemH.ListPurchases)

	// Reminder API routes
	mux.HandleFunc("GET /api/reminders", s.reminderH.List)
	mux.HandleFunc("PUT /api/reminders", s.reminderH.Put)
	mux.HandleFunc("POST /api/reminders/import", s.reminderH.Import)
	mux.HandleFunc("DELETE /api/reminders/{product}", s.reminderH.Delete)
	mux.HandleFunc("GET /api/notifications", s.reminderH.ListScheduled)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.reminderH.CancelScheduled)
	mux.HandleFunc("POST /api/notifications/tap", s.pushH.Tap)

	// Push API routes
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/settings/notifications", s.pushH.GetSettings)
	mux.HandleFunc("PUT /api/settings/notifications", s.pushH.UpdateSettings)

	// Analytics API routes
	mux.HandleFunc("GET /api/analytics/monthly", s.analyticsH.Monthly)
	mux.HandleFunc("GET /api/analytics/shops", s.analyticsH.Shops)
	mux.HandleFunc("GET /api/analytics/purchases", s.analyticsH.Purchases)
	mux.HandleFunc("GET /api/analytics/top-items", s.analyticsH.TopItems)

	// Suggestions
	mux.HandleFunc("GET /api/suggestions", s.suggestH.Suggestions)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
