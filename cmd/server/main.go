package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/config"
	"github.com/edmoraes/cinepos/internal/database"
	"github.com/edmoraes/cinepos/internal/handler"
	"github.com/edmoraes/cinepos/internal/queue"
	"github.com/edmoraes/cinepos/internal/repository"
	"github.com/edmoraes/cinepos/internal/router"
	"github.com/edmoraes/cinepos/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; availability cache and rate limiting disabled")
	}

	companies := repository.NewCompanyRepo(db)
	employees := repository.NewEmployeeRepo(db)
	movies := repository.NewMovieRepo(db)
	rooms := repository.NewRoomRepo(db)
	seats := repository.NewSeatRepo(db)
	sessions := repository.NewSessionRepo(db)
	reservations := repository.NewReservationRepo(db)
	tickets := repository.NewTicketRepo(db)
	sales := repository.NewSaleRepo(db)
	discounts := repository.NewDiscountRepo(db)
	products := repository.NewProductRepo(db)

	audit := service.NewAMQPAuditor(cfg.AMQPURL)
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	availability := service.NewAvailabilityService(sessions, seats, tickets, reservations, rdb)
	reservationSvc := service.NewReservationService(db, sessions, seats, tickets, reservations, availability, audit)
	saleSvc := service.NewSaleService(db, sales, sessions, seats, tickets, reservations, products, discounts, availability, audit)
	discountSvc := service.NewDiscountService(db, sales, discounts, audit)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, employees),
		Movies:       handler.NewMovieHandler(movies),
		Rooms:        handler.NewRoomHandler(rooms, seats),
		Sessions:     handler.NewSessionHandler(sessions, movies, rooms, availability),
		Reservations: handler.NewReservationHandler(reservationSvc),
		Sales:        handler.NewSaleHandler(saleSvc, discountSvc),
		Products:     handler.NewProductHandler(products),
		Discounts:    handler.NewDiscountHandler(discounts),
		Employees:    handler.NewEmployeeHandler(cfg, employees),
		Tickets:      handler.NewTicketHandler(tickets, availability, audit),
		Companies:    handler.NewCompanyHandler(cfg, companies, employees),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
