package books

type CreateBookPayload struct {
	Title      string `json:"title" mod:"trim" validate:"required,max=200"`
	Author     string `json:"author" mod:"trim" validate:"required,max=200"`
	TotalPages int    `json:"total_pages" validate:"required,min=1"`
	StartPage  int    `json:"start_page" default:"1" validate:"min=1"`
	StartDate  string `json:"start_date" validate:"required,date"`
}

type ListBooksQuery struct {
	Status string `query:"status" json:"status,omitempty" validate:"omitempty,oneof=active paused finished"`
	Limit  int    `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset int    `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type ConfirmCustomReadPayload struct {
	FromPage int `json:"from_page" validate:"required,min=1"`
	ToPage   int `json:"to_page" validate:"required,min=1"`
}
