package models

import "time"

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Completed   bool         `json:"completed"`
	OwnerID     string       `json:"ownerId"`
	CategoryID  *string      `json:"categoryId"`
	Category    *CategoryRef `json:"category"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TaskPage is one page of an owner's task list.
type TaskPage struct {
	Tasks       []Task `json:"tasks"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalTasks  int    `json:"totalTasks"`
}

// TaskQuery selects a page of tasks. Search is a case-insensitive substring of the title.
type TaskQuery struct {
	Page   int
	Limit  int
	Search string
}

// Offset of the first row of the page.
func (q TaskQuery) Offset() int { return (q.Page - 1) * q.Limit }
