package journal

type CreateEmotionRequest struct {
	Name  string `json:"name" validate:"required,max=16"`
	Color string `json:"color" validate:"required"`
}

type UpdateEmotionRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=16"`
	Color *string `json:"color,omitempty"`
}

type CreateDayRequest struct {
	Date        string   `json:"date" validate:"required,len=10"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Emotions    []string `json:"emotions" validate:"required,min=1,dive,required"`
}

type UpdateDayRequest struct {
	Date        *string   `json:"date,omitempty" validate:"omitempty,len=10"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Emotions    *[]string `json:"emotions,omitempty" validate:"omitempty,min=1,dive,required"`
}
