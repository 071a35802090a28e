package entity

type AssignmentStats struct {
	NumAssigned int `json:"num_assigned"`
	Completion  int `json:"completion"`
}
