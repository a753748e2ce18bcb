// Dev seeder: loads a small set of logins, interpreters, patients, and
// pending requests so the API is explorable locally. Safe to re-run; rows
// that already exist are skipped.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/carebridge/interpreter-booking/internal/auth"
	"github.com/carebridge/interpreter-booking/internal/directory"
	"github.com/carebridge/interpreter-booking/internal/interpreters"
	"github.com/carebridge/interpreter-booking/internal/patients"
	"github.com/carebridge/interpreter-booking/internal/requests"
)

const seedPassword = "changeme123"

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	userRepo := auth.NewPostgresRepository(pool)
	interpreterRepo := interpreters.NewPostgresRepository(pool)
	patientRepo := patients.NewPostgresRepository(pool)
	requestStore := requests.NewPostgresStore(pool)

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	staff, err := userRepo.Create(ctx, "staff1", hash, auth.RoleStaff)
	if err != nil {
		if !errors.Is(err, auth.ErrUsernameTaken) {
			log.Fatalf("seed staff: %v", err)
		}
		staff, err = userRepo.GetByUsername(ctx, "staff1")
		if err != nil {
			log.Fatalf("load staff: %v", err)
		}
	}
	if _, err := userRepo.Create(ctx, "admin1", hash, auth.RoleAdmin); err != nil && !errors.Is(err, auth.ErrUsernameTaken) {
		log.Fatalf("seed admin: %v", err)
	}

	seedInterpreters := []interpreters.CreateInterpreterRequest{
		{Username: "fatima.i", Name: "Fatima Al-Rashid", Language: "Arabic", PhoneNumber: "555-0101", Gender: "female"},
		{Username: "amina.i", Name: "Amina Warsame", Language: "Somali", PhoneNumber: "555-0102", Gender: "female"},
		{Username: "carlos.i", Name: "Carlos Mendoza", Language: "Spanish", PhoneNumber: "555-0103", Gender: "male"},
	}
	for _, req := range seedInterpreters {
		req.Password = seedPassword
		if _, err := interpreterRepo.CreateWithLogin(ctx, req.Username, hash, &req); err != nil && !errors.Is(err, interpreters.ErrUsernameTaken) {
			log.Fatalf("seed interpreter %s: %v", req.Username, err)
		}
	}

	seedPatients := []directory.Demographics{
		{FHIRID: "seed-pat-1", Name: "Layla Haddad", BirthDate: "1984-03-12", Gender: "female", Language: "Arabic"},
		{FHIRID: "seed-pat-2", Name: "Hodan Abdi", BirthDate: "1991-07-02", Gender: "female", Language: "Somali"},
		{FHIRID: "seed-pat-3", Name: "Miguel Torres", BirthDate: "1958-11-23", Gender: "male", Language: "Spanish"},
	}
	var seeded []*patients.Patient
	for _, demo := range seedPatients {
		p, err := patientRepo.UpsertFromDirectory(ctx, demo, "Main Campus")
		if err != nil {
			log.Fatalf("seed patient %s: %v", demo.FHIRID, err)
		}
		seeded = append(seeded, p)
	}

	pending, err := requestStore.ListPending(ctx, "")
	if err != nil {
		log.Fatalf("list pending: %v", err)
	}
	if len(pending) == 0 {
		for i, p := range seeded {
			submit := &requests.SubmitRequest{
				PatientID:      p.ID,
				Language:       p.Language,
				IsStat:         i == 0,
				DeliveryMethod: requests.DeliveryOnsite,
				Location:       "Ward 3",
			}
			if _, err := requestStore.Create(ctx, submit, staff.ID); err != nil {
				log.Fatalf("seed request for %s: %v", p.FHIRID, err)
			}
		}
	}

	log.Println("seed complete")
}
