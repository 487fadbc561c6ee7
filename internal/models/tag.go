package models

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Permission — дополнительное право, которое сайт регистрирует в админке.
type Permission struct {
	AppLabel string `json:"app_label"`
	Codename string `json:"codename"`
	Name     string `json:"name"`
}
