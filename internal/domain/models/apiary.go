package models

// Apiary is a named site holding one or more hives.
type Apiary struct {
	ID          string   `bson:"_id" json:"id"`
	Name        string   `bson:"nome" json:"name" binding:"required"`
	Location    string   `bson:"localizacao" json:"location"`
	Environment string   `bson:"meio" json:"environment"`
	Latitude    float64  `bson:"latitude" json:"latitude"`
	Longitude   float64  `bson:"longitude" json:"longitude"`
	HiveIDs     []string `bson:"colmeias" json:"hive_ids"`
	OwnerID     string   `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
}

// HasCoordinates reports whether the apiary was registered with a map position.
func (a Apiary) HasCoordinates() bool {
	return a.Latitude != 0 || a.Longitude != 0
}

// Hive is a managed colony belonging to an apiary.
type Hive struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"nome" json:"name" binding:"required"`
	Type        string `bson:"tipo" json:"type"`
	Status      string `bson:"estado" json:"status"`
	ApiaryID    string `bson:"apiario" json:"apiary_id" binding:"required"`
	CreatedOn   string `bson:"data_criacao" json:"created_on"`
	InstalledOn string `bson:"data_instalacao" json:"installed_on"`
	Description string `bson:"descricao" json:"description"`
	Notes       string `bson:"notas" json:"notes"`
	OwnerID     string `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
}

// HiveUpdate carries the editable hive fields.
type HiveUpdate struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	InstalledOn string `json:"installed_on"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// Known hive types and statuses offered by the mobile app.
var (
	HiveTypes    = []string{"Langstroth", "Lusitano", "Reversível", "Industrial (dadant)", "Top Bar", "Warre", "Outro"}
	HiveStatuses = []string{"Ativa", "Inativa", "Em observação"}
)

const (
	// DefaultHiveStatus is applied when a hive is created without a status.
	DefaultHiveStatus = "Ativa"
	// UnknownApiaryName is shown when an apiary cannot be resolved.
	UnknownApiaryName = "Desconhecido"
)
