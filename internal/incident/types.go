package incident

// Incident representa una revisión de calidad de un servicio en campo
// asociada a un proveedor y a un técnico
type Incident struct {
	ID                string `json:"id"`
	IncidentNumber    string `json:"incidentNumber"`
	Date              string `json:"date"` // YYYY-MM-DD
	VendorName        string `json:"vendorName"`
	TechnicianName    string `json:"technicianName"`
	OverallScore      int    `json:"overallScore"`      // 1–5 nominal, no se fuerza
	PunctualityScore  int    `json:"punctualityScore"`  // 1–5 nominal, no se fuerza
	DeliverablesScore int    `json:"deliverablesScore"` // 1–5 nominal, no se fuerza
	IsAbandoned       bool   `json:"isAbandoned"`
	Feedback          string `json:"feedback"`
}

// MasterVendor proveedor autorizado de la lista maestra
type MasterVendor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MasterTechnician técnico autorizado, siempre ligado a un proveedor
type MasterTechnician struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	VendorName string `json:"vendorName"`
}

// BannedTechnician entrada de la lista negra por cliente
type BannedTechnician struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	VendorName   string `json:"vendorName"`
	CustomerName string `json:"customerName"`
	Reason       string `json:"reason"`
	DateAdded    string `json:"dateAdded"`
}

// UserAccount usuario con acceso a la administración
type UserAccount struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// EntityType tipo de entidad sobre la que se corre un análisis
type EntityType string

const (
	EntityTechnician EntityType = "Technician"
	EntityVendor     EntityType = "Vendor"
)

// ParseEntityType acepta el nombre en inglés o español, sin distinguir mayúsculas
func ParseEntityType(s string) (EntityType, bool) {
	switch normalizeKey(s) {
	case "technician", "tech", "tecnico", "técnico":
		return EntityTechnician, true
	case "vendor", "proveedor":
		return EntityVendor, true
	}
	return "", false
}

// AnalysisResult resultado de un análisis de desempeño
type AnalysisResult struct {
	EntityName      string     `json:"entityName"`
	EntityType      EntityType `json:"entityType"`
	TotalIncidents  int        `json:"totalIncidents"`
	AvgOverall      float64    `json:"avgOverall"`
	AvgPunctuality  float64    `json:"avgPunctuality"`
	AvgDeliverables float64    `json:"avgDeliverables"`
	TotalAbandons   int        `json:"totalAbandons"`
	ReportText      string     `json:"reportText"`
	BanContext      string     `json:"banContext,omitempty"` // vacío si no está en lista negra
}

// Banned indica si el análisis se hizo sobre un técnico en lista negra
func (r *AnalysisResult) Banned() bool {
	return r.BanContext != ""
}
