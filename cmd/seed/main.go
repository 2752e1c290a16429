// Seeds demo accounts and sample complaints. Replaces the mock data the old
// frontend shipped hardcoded in its screens.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/viksitkanpur/portal/internal/auth"
	"github.com/viksitkanpur/portal/internal/config"
	"github.com/viksitkanpur/portal/internal/database"
	"github.com/viksitkanpur/portal/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	password := flag.String("password", "kanpur123", "Password for all seeded accounts")
	withProblems := flag.Bool("problems", true, "Also seed sample complaints")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	users := []model.User{
		{Name: "Ramesh Gupta", Email: "citizen@viksitkanpur.in", Phone: "+91-9876500001", Role: model.RoleCitizen},
		{Name: "Sunita Devi", Email: "sunita@viksitkanpur.in", Phone: "+91-9876500002", Role: model.RoleCitizen},
		{Name: "Arun Kumar", Email: "arun.worker@viksitkanpur.in", Role: model.RoleFieldWorker, Department: "Jal Kal Vibhag"},
		{Name: "Vikas Singh", Email: "vikas.worker@viksitkanpur.in", Role: model.RoleFieldWorker, Department: "Public Works Department"},
		{Name: "Meena Sharma", Email: "meena.worker@viksitkanpur.in", Role: model.RoleFieldWorker, Department: "Nagar Nigam Health Department"},
		{Name: "Pradeep Verma", Email: "head.jalkal@viksitkanpur.in", Role: model.RoleDepartmentHead, Department: "Jal Kal Vibhag"},
		{Name: "Anita Mishra", Email: "dm@viksitkanpur.in", Role: model.RoleDistrictMagistrate},
	}

	seeded := make(map[string]model.User)
	for _, u := range users {
		u.Provider = model.ProviderPassword
		u.PasswordHash = hash
		u.CreatedAt = time.Now()
		u.UpdatedAt = time.Now()

		var existing model.User
		err := db.Where("email = ? AND provider = ?", u.Email, model.ProviderPassword).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&u).Error; err != nil {
				log.Fatalf("Failed to seed user %s: %v", u.Email, err)
			}
			seeded[u.Email] = u
			log.Printf("Created %s (%s)", u.Email, u.Role)
		} else if err != nil {
			log.Fatalf("Failed to look up user %s: %v", u.Email, err)
		} else {
			seeded[u.Email] = existing
			log.Printf("Skipped existing %s", u.Email)
		}
	}

	if !*withProblems {
		return
	}

	citizen := seeded["citizen@viksitkanpur.in"]

	samples := []struct {
		category    string
		description string
		location    string
		status      string
		priority    string
		daysAgo     int
	}{
		{model.CategoryWater, "Water pipeline burst near the temple, street flooded", "Ashok Nagar, near Shiv Mandir", model.StatusNotCompleted, model.PriorityHigh, 1},
		{model.CategoryRoads, "Large pothole causing accidents", "GT Road, Rawatpur crossing", model.StatusInProgress, model.PriorityMedium, 5},
		{model.CategoryGarbage, "Garbage not collected for a week", "Shastri Nagar, Block C", model.StatusCompleted, model.PriorityMedium, 12},
		{model.CategoryStreetLights, "Street light pole leaning dangerously", "Civil Lines, near post office", model.StatusNotCompleted, model.PriorityHigh, 2},
	}

	for _, s := range samples {
		createdAt := time.Now().AddDate(0, 0, -s.daysAgo)

		history := []model.StatusEntry{{
			Status:    model.StatusNotCompleted,
			Timestamp: createdAt,
			UpdatedBy: citizen.Name,
			Notes:     "Complaint registered",
		}}
		if s.status != model.StatusNotCompleted {
			history = append(history, model.StatusEntry{
				Status:    s.status,
				Timestamp: createdAt.Add(48 * time.Hour),
				UpdatedBy: "Pradeep Verma",
			})
		}
		historyJSON, _ := json.Marshal(history)

		problem := model.Problem{
			ID:                 uuid.NewString(),
			UserID:             citizen.ID,
			UserName:           citizen.Name,
			UserEmail:          citizen.Email,
			ProblemCategories:  []string{s.category},
			OthersText:         s.description,
			Location:           s.location,
			Latitude:           26.4499,
			Longitude:          80.3319,
			Status:             s.status,
			Priority:           s.priority,
			AssignedDepartment: model.DepartmentFor(s.category),
			StatusHistory:      datatypes.JSON(historyJSON),
			CreatedAt:          createdAt,
			UpdatedAt:          createdAt,
		}

		if err := db.Create(&problem).Error; err != nil {
			log.Fatalf("Failed to seed problem: %v", err)
		}
		log.Printf("Seeded complaint %s (%s)", problem.ID, s.status)
	}

	log.Println("Seed complete")
}
