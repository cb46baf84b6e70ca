package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayanda-dev/studio-booking/internal/config"
	"github.com/ayanda-dev/studio-booking/internal/database"
	"github.com/ayanda-dev/studio-booking/internal/model"
	"github.com/ayanda-dev/studio-booking/internal/repository"
)

// The studio timetable: hourly group slots 07:00-11:00 every day except
// Sunday, plus 16:00-18:00 on weekdays.  Seeding is idempotent, so the
// command can run on every deploy.
var (
	morningHours   = []int{7, 8, 9, 10, 11}
	afternoonHours = []int{16, 17, 18}
)

// demoClients mirrors the studio's onboarding sheet.  Only missing
// rows are inserted; existing names are left alone.
var demoClients = []struct {
	name string
	wa   string
}{
	{"Aisha K", "27840000021"},
	{"Bongani D", "27840000022"},
	{"Carla P", "27840000023"},
	{"Emma T", "27840000025"},
	{"Farai N", "27840000026"},
	{"Grace L", "27840000027"},
	{"Ines C", "27840000029"},
	{"Jabu S", "27840000030"},
	{"Mandla Q", "27840000033"},
	{"Nadia F", "27840000034"},
	{"Priya S", "27840000038"},
	{"Raj S", "27840000039"},
	{"Zoe K", "27840000040"},
	{"Liam K", "27840000041"},
	{"Thandi Z", "27840000045"},
}

func main() {
	days := flag.Int("days", 14, "how many days of timetable to seed")
	withClients := flag.Bool("clients", true, "seed the demo client list")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	sessions := repository.NewSessionRepo(db)
	created := 0
	today := time.Now().UTC()
	for d := 0; d < *days; d++ {
		day := today.AddDate(0, 0, d)
		if day.Weekday() == time.Sunday {
			continue
		}
		date := day.Format("2006-01-02")
		hours := morningHours
		if day.Weekday() != time.Saturday {
			hours = append(append([]int{}, morningHours...), afternoonHours...)
		}
		for _, h := range hours {
			start := fmt.Sprintf("%02d:00", h)
			if _, err := sessions.Ensure(ctx, date, start, model.KindGroup, model.DefaultCapacity(model.KindGroup), nil); err != nil {
				log.Fatalf("seed session %s %s: %v", date, start, err)
			}
			created++
		}
	}
	log.Printf("ensured %d timetable sessions over %d days", created, *days)

	if *withClients {
		clients := repository.NewClientRepo(db)
		for _, cl := range demoClients {
			if _, err := clients.UpsertByWa(ctx, cl.wa, cl.name); err != nil {
				log.Fatalf("seed client %s: %v", cl.wa, err)
			}
		}
		log.Printf("ensured %d demo clients", len(demoClients))
	}
}
