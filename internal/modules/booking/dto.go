package booking

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=completed cancelled"`
}

type listQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
