package router

import (
	"time"

	"github.com/AlenaMolokova/escort/internal/config"
	"github.com/AlenaMolokova/escort/internal/handlers"
	"github.com/AlenaMolokova/escort/internal/middleware"
	"github.com/AlenaMolokova/escort/internal/notify"
	"github.com/AlenaMolokova/escort/internal/storage"
	"github.com/AlenaMolokova/escort/internal/usecase"
	"github.com/go-chi/chi/v5"
)

const (
	WorkerPrefix = "/api/worker"
	OrdersPrefix = "/api/orders"
	SquadsPrefix = "/api/squads"
	AdminPrefix  = "/api/admin"
)

func SetupRoutes(store *storage.Storage, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	notifier := notify.NewClient(cfg.NotifierAddr)
	directory := usecase.NewDirectory(store, store, notifier, time.Now)
	orders := usecase.NewOrders(store, notifier)
	engine := usecase.NewEngine(directory, store, store, store, notifier, time.Now)
	pool := usecase.NewPool(directory, store, store, engine, notifier, time.Now)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(cfg.TokenSecret))

		r.Post(WorkerPrefix+"/register", handlers.NewRegisterHandler(directory).ServeHTTP)
		r.Post(WorkerPrefix+"/account", handlers.NewGameAccountHandler(directory).ServeHTTP)
		r.Post(WorkerPrefix+"/rules/accept", handlers.NewRulesHandler(directory).ServeHTTP)
		r.Get(WorkerPrefix+"/profile", handlers.NewProfileHandler(directory).ServeHTTP)
		r.Get(WorkerPrefix+"/orders", handlers.NewWorkerOrdersHandler(orders).ServeHTTP)

		r.Get(OrdersPrefix, handlers.NewPendingOrdersHandler(orders).ServeHTTP)
		r.Post(OrdersPrefix+"/{orderID}/join", handlers.NewJoinHandler(pool).ServeHTTP)
		r.Post(OrdersPrefix+"/{orderID}/withdraw", handlers.NewWithdrawHandler(pool).ServeHTTP)
		r.Post(OrdersPrefix+"/{orderID}/confirm", handlers.NewConfirmHandler(pool).ServeHTTP)
		r.Post(OrdersPrefix+"/{orderID}/complete", handlers.NewCompleteHandler(engine).ServeHTTP)
		r.Post(OrdersPrefix+"/{orderID}/rate", handlers.NewRateHandler(engine).ServeHTTP)

		r.Get(SquadsPrefix, handlers.NewListSquadsHandler(directory).ServeHTTP)
		r.Get(SquadsPrefix+"/{squadID}/stats", handlers.NewSquadStatsHandler(directory).ServeHTTP)
		r.Get(SquadsPrefix+"/{squadID}/members", handlers.NewSquadMembersHandler(directory).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOnly(cfg.AdminIDs))

			r.Post(AdminPrefix+"/orders", handlers.NewIngestOrderHandler(orders).ServeHTTP)
			r.Post(AdminPrefix+"/squads", handlers.NewCreateSquadHandler(directory).ServeHTTP)
			r.Get(AdminPrefix+"/workers", handlers.NewListWorkersHandler(directory).ServeHTTP)
			r.Post(AdminPrefix+"/workers/assign", handlers.NewAssignWorkerHandler(directory).ServeHTTP)
			r.Delete(AdminPrefix+"/workers/{workerID}", handlers.NewRemoveWorkerHandler(directory).ServeHTTP)
			r.Post(AdminPrefix+"/workers/{workerID}/restrict", handlers.NewRestrictHandler(directory).ServeHTTP)
			r.Post(AdminPrefix+"/credit", handlers.NewCreditHandler(engine).ServeHTTP)
		})
	})

	return r
}
