package ds

import "time"

// 1. Таблица заявок на POC лицензию
type POCRequest struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReferenceCode string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"reference_code"` // POC-<год>-XXXXXX, неизменяемый
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`

	// Данные запрашивающего
	RequestorName    string `gorm:"type:varchar(100);not null" json:"requestor_name"`
	RequestorEmail   string `gorm:"type:varchar(100);not null" json:"requestor_email"`
	RequestorType    string `gorm:"type:varchar(30);not null" json:"requestor_type"` // hpe-sales-engineer, partner-engineer, gsi-partner, distributor, internal-team
	RequestorCompany string `gorm:"type:varchar(100)" json:"requestor_company,omitempty"`
	RequestorRegion  string `gorm:"type:varchar(30);not null" json:"requestor_region"`
	OpportunityID    string `gorm:"type:varchar(50)" json:"opportunity_id,omitempty"`

	// Данные заказчика
	CustomerName         string `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerIndustry     string `gorm:"type:varchar(50);not null" json:"customer_industry"`
	CustomerCountry      string `gorm:"type:varchar(50)" json:"customer_country,omitempty"`
	CustomerContactName  string `gorm:"type:varchar(100)" json:"customer_contact_name,omitempty"`
	CustomerContactEmail string `gorm:"type:varchar(100)" json:"customer_contact_email,omitempty"`

	// Параметры POC
	UseCaseDescription    string     `gorm:"type:text;not null" json:"use_case_description"`
	BusinessJustification string     `gorm:"type:text" json:"business_justification,omitempty"`
	POCDuration           int        `gorm:"type:int;not null;default:45" json:"poc_duration"` // 45, 60 или 90 дней
	StartDate             *time.Time `gorm:"default:null" json:"start_date,omitempty"`
	ExpectedEndDate       *time.Time `gorm:"default:null" json:"expected_end_date,omitempty"` // StartDate + POCDuration
	SuccessCriteria       string     `gorm:"type:text;not null" json:"success_criteria"`
	DealSize              string     `gorm:"type:varchar(20);not null" json:"deal_size"`
	EnvironmentReady      bool       `gorm:"type:boolean;default:false;not null" json:"environment_ready"`

	// Инфраструктура (jsonb)
	Datacenters        []Datacenter        `gorm:"type:jsonb;serializer:json" json:"datacenters"`
	PublicCloud        []PublicCloudEntry  `gorm:"type:jsonb;serializer:json" json:"public_cloud"`
	KubernetesClusters []KubernetesCluster `gorm:"type:jsonb;serializer:json" json:"kubernetes_clusters"`
	Integrations       Integrations        `gorm:"type:jsonb;serializer:json" json:"integrations"`
	Attachments        []Attachment        `gorm:"type:jsonb;serializer:json" json:"attachments,omitempty"`

	// Рассчитываемые поля - пересчитываются при создании и сохраняются
	OnPremSockets      int `gorm:"type:int;not null" json:"on_prem_sockets"`
	PublicCloudSockets int `gorm:"type:int;not null" json:"public_cloud_sockets"`
	KubernetesSockets  int `gorm:"type:int;not null" json:"kubernetes_sockets"`
	TotalSockets       int `gorm:"type:int;not null" json:"total_sockets"` // всегда сумма трех компонент

	// Жизненный цикл
	Status        string     `gorm:"type:varchar(20);not null" json:"status"`
	Outcome       string     `gorm:"type:varchar(30)" json:"outcome,omitempty"`
	ApprovedBy    string     `gorm:"type:varchar(100)" json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `gorm:"default:null" json:"approved_at,omitempty"`
	LicenseKey    string     `gorm:"type:varchar(255)" json:"license_key,omitempty"`
	InternalNotes string     `gorm:"type:text" json:"internal_notes,omitempty"` // append-only журнал комментариев

	// Логическое удаление
	DeletedAt *time.Time `gorm:"default:null;index" json:"deleted_at,omitempty"`
	DeletedBy string     `gorm:"type:varchar(100)" json:"deleted_by,omitempty"`
}
