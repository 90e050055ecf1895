package types

import "time"

type UserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type ProjectResponse struct {
	ID                  uint      `json:"id"`
	Title               string    `json:"title"`
	BriefDescription    string    `json:"brief_description"`
	DetailedDescription string    `json:"detailed_description"`
	Status              string    `json:"status"`
	CreatedDate         time.Time `json:"created_date"`
	UserID              uint      `json:"user_id"`
}

type TodoResponse struct {
	ID              uint   `json:"id"`
	TaskTitle       string `json:"task_title"`
	TaskDescription string `json:"task_description"`
	Completed       bool   `json:"completed"`
	ProjectID       uint   `json:"project_id"`
}

type ResourceResponse struct {
	ID                  uint   `json:"id"`
	ResourceTitle       string `json:"resource_title"`
	ResourceDescription string `json:"resource_description"`
	Link                string `json:"link"`
	ResourceType        string `json:"resource_type"`
	TodoID              uint   `json:"todo_id"`
}
