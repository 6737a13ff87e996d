package model

// One row per year, incremented atomically to reserve certificate numbers.
type CertificateSequence struct {
	Year      int `gorm:"primaryKey" json:"year"`
	LastValue int `gorm:"type:int;not null;default:0" json:"lastValue"`
}

func (cs CertificateSequence) TableName() string {
	return "certificate_sequences"
}
