package normalizeschedule

import "chat-intake/internal/models"

type Input struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type Output struct {
	models.NormalizedAppointment
	DateFallback bool `json:"dateFallback"`
	TimeFallback bool `json:"timeFallback"`
}
