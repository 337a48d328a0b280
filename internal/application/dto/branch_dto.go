package dto

import "time"

// BranchRequest create/update input.
type BranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Company string `json:"company"`
}

// BranchResponse output of a branch.
type BranchResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Company   string    `json:"company"`
	CreatedAt time.Time `json:"created_at"`
}

// BranchListResponse list of branches.
type BranchListResponse struct {
	Items []BranchResponse `json:"items"`
}
