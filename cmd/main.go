package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saliheu/mahkeme-randevu/internal/config"
	"github.com/saliheu/mahkeme-randevu/internal/db"
	"github.com/saliheu/mahkeme-randevu/internal/lock"
	"github.com/saliheu/mahkeme-randevu/internal/model"
	"github.com/saliheu/mahkeme-randevu/internal/notify"
	"github.com/saliheu/mahkeme-randevu/internal/repository"
	"github.com/saliheu/mahkeme-randevu/internal/scheduler"
)

func main() {
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("load db config: %v", err)
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}
	loc, err := appCfg.Location()
	if err != nil {
		log.Fatalf("resolve time zone: %v", err)
	}

	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// Distributed locking: Redis when configured, otherwise a process-
	// local locker good enough for single-instance deployments.
	var locker lock.Locker
	if appCfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := lock.NewRedisClient(ctx, appCfg.RedisAddr, appCfg.RedisPassword, appCfg.RedisDB)
		cancel()
		if err != nil {
			log.Fatalf("init redis: %v", err)
		}
		defer client.Close()
		locker = lock.NewRedisLocker(client)
		log.Printf("using redis locker at %s", appCfg.RedisAddr)
	} else {
		locker = lock.NewMemoryLocker()
		log.Println("REDIS_ADDR not set, using in-process locker")
	}

	// Notifications: AMQP when a broker URL is configured, otherwise
	// the process log.
	var notifier notify.Notifier
	if appCfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(appCfg.AMQPURL, appCfg.AMQPExchange)
		if err != nil {
			log.Fatalf("init amqp: %v", err)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
		log.Printf("publishing notifications to exchange %q", appCfg.AMQPExchange)
	} else {
		notifier = notify.NewLogNotifier()
		log.Println("AMQP_URL not set, logging notifications to stdout")
	}

	apptRepo := repository.NewGormAppointmentRepository(gormDB)
	courtRepo := repository.NewGormCourtRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)
	jobRepo := repository.NewGormJobLogRepository(gormDB)

	schedCfg := scheduler.DefaultConfig()
	schedCfg.ReminderSpec = appCfg.ReminderCron
	schedCfg.SummarySpec = appCfg.SummaryCron
	schedCfg.NoShowSpec = appCfg.NoShowCron
	schedCfg.PurgeSpec = appCfg.PurgeCron
	schedCfg.NoShowGrace = time.Duration(appCfg.NoShowGraceHours) * time.Hour
	schedCfg.RetainTerminal = time.Duration(appCfg.RetainTerminalDay) * 24 * time.Hour

	sched := scheduler.New(schedCfg, apptRepo, userRepo, courtRepo, eventRepo, jobRepo, locker, notifier, loc)
	if err := sched.Start(); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down scheduler...")
	sched.Stop()
}
