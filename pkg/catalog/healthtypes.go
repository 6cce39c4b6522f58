package catalog

const (
	CategoryActivity         = "activity"
	CategoryBodyMeasurements = "body_measurements"
	CategoryCycleTracking    = "cycle_tracking"
	CategoryNutrition        = "nutrition"
	CategorySleep            = "sleep"
	CategoryVitals           = "vitals"
	CategoryOther            = "other"
)

type healthType struct {
	category string
	label    string
}

// healthTypes maps a permission's data type (the part after READ_/WRITE_)
// to its display category and label.
var healthTypes = map[string]healthType{
	"ACTIVE_CALORIES_BURNED":   {CategoryActivity, "Active calories burned"},
	"DISTANCE":                 {CategoryActivity, "Distance"},
	"ELEVATION_GAINED":         {CategoryActivity, "Elevation gained"},
	"EXERCISE":                 {CategoryActivity, "Exercise"},
	"FLOORS_CLIMBED":           {CategoryActivity, "Floors climbed"},
	"POWER":                    {CategoryActivity, "Power"},
	"SPEED":                    {CategoryActivity, "Speed"},
	"STEPS":                    {CategoryActivity, "Steps"},
	"CYCLING_PEDALING_CADENCE": {CategoryActivity, "Cycling pedaling cadence"},
	"STEPS_CADENCE":            {CategoryActivity, "Steps cadence"},
	"BASAL_METABOLIC_RATE":     {CategoryBodyMeasurements, "Basal metabolic rate"},
	"BODY_FAT":                 {CategoryBodyMeasurements, "Body fat"},
	"HEIGHT":                   {CategoryBodyMeasurements, "Height"},
	"WEIGHT":                   {CategoryBodyMeasurements, "Weight"},
	"MENSTRUATION":             {CategoryCycleTracking, "Menstruation"},
	"OVULATION_TEST":           {CategoryCycleTracking, "Ovulation test"},
	"HYDRATION":                {CategoryNutrition, "Hydration"},
	"NUTRITION":                {CategoryNutrition, "Nutrition"},
	"SLEEP":                    {CategorySleep, "Sleep"},
	"BASAL_BODY_TEMPERATURE":   {CategoryVitals, "Basal body temperature"},
	"BLOOD_PRESSURE":           {CategoryVitals, "Blood pressure"},
	"BODY_TEMPERATURE":         {CategoryVitals, "Body temperature"},
	"HEART_RATE":               {CategoryVitals, "Heart rate"},
	"OXYGEN_SATURATION":        {CategoryVitals, "Oxygen saturation"},
	"RESPIRATORY_RATE":         {CategoryVitals, "Respiratory rate"},
}
