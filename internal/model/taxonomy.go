package model

import "strings"

// Complaint categories as shown to citizens. Several are bilingual composites
// ("English / हिन्दी"); consumers should split with EnglishCategory.
const (
	CategoryWater        = "Water Issues / जल समस्या"
	CategoryRoads        = "Road Problems / सड़क समस्या"
	CategoryElectricity  = "Electricity / बिजली"
	CategoryGarbage      = "Garbage & Sanitation / कचरा और सफाई"
	CategoryStreetLights = "Street Lights / स्ट्रीट लाइट"
	CategoryDrainage     = "Drainage & Sewage / नाली और सीवर"
	CategoryEncroachment = "Encroachment / अतिक्रमण"
	CategoryStrayAnimals = "Stray Animals / आवारा पशु"
)

// departmentByCategory maps the English half of a category to the municipal
// department that owns it. The portal core uses this same table when the
// backend leaves assigned_department empty, so client and server cannot drift.
var departmentByCategory = map[string]string{
	"water issues":         "Jal Kal Vibhag",
	"road problems":        "Public Works Department",
	"electricity":          "KESCO",
	"garbage & sanitation": "Nagar Nigam Health Department",
	"street lights":        "Nagar Nigam Electrical",
	"drainage & sewage":    "Jal Nigam",
	"encroachment":         "Nagar Nigam Enforcement",
	"stray animals":        "Veterinary Department",
}

const DefaultDepartment = "Nagar Nigam General"

// EnglishCategory returns the English half of a possibly bilingual category
// string. Splitting is defensive: a category without a separator is returned
// trimmed as-is.
func EnglishCategory(category string) string {
	head, _, _ := strings.Cut(category, "/")
	return strings.TrimSpace(head)
}

// DepartmentFor resolves the owning department for a complaint category.
func DepartmentFor(category string) string {
	key := strings.ToLower(EnglishCategory(category))
	if dept, ok := departmentByCategory[key]; ok {
		return dept
	}
	return DefaultDepartment
}
