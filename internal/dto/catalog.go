package dto

// Request payloads for the thin CRUD surface.

type CreateSubjectRequest struct {
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category"`
	Level        string  `json:"level"`
	Color        string  `json:"color"`
	CurrentGrade float64 `json:"currentGrade" validate:"gte=0,lte=100"`
	TargetGrade  float64 `json:"targetGrade" validate:"gte=0,lte=100"`
}

type UpdateSubjectRequest struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Level        *string  `json:"level"`
	Color        *string  `json:"color"`
	CurrentGrade *float64 `json:"currentGrade" validate:"omitempty,gte=0,lte=100"`
	TargetGrade  *float64 `json:"targetGrade" validate:"omitempty,gte=0,lte=100"`
}

type CreateExamRequest struct {
	SubjectID string   `json:"subjectId" validate:"required"`
	PaperType string   `json:"paperType" validate:"required"`
	ExamDate  string   `json:"examDate" validate:"required"`
	Units     []string `json:"units"`
	Weight    float64  `json:"weight" validate:"gte=0,lte=100"`
}

type CreateAssignmentRequest struct {
	SubjectID         string  `json:"subjectId" validate:"required"`
	Title             string  `json:"title" validate:"required"`
	DueDate           string  `json:"dueDate" validate:"required"`
	CompletionPercent float64 `json:"completionPercent" validate:"gte=0,lte=100"`
	EstimatedHours    float64 `json:"estimatedHours" validate:"gte=0"`
}

type CreateBusySlotRequest struct {
	DayOfWeek    int    `json:"dayOfWeek" validate:"gte=0,lte=6"`
	Date         string `json:"date"`
	StartMinutes int    `json:"startMinutes" validate:"gte=0,lt=1440"`
	EndMinutes   int    `json:"endMinutes" validate:"gt=0,lte=1440"`
	Recurring    bool   `json:"recurring"`
	Label        string `json:"label"`
}

type RecordAttemptRequest struct {
	SubjectID        string `json:"subjectId" validate:"required"`
	Topic            string `json:"topic" validate:"required"`
	Difficulty       string `json:"difficulty" validate:"required,oneof=easy medium hard expert"`
	Correct          bool   `json:"correct"`
	TimeSpentSeconds int    `json:"timeSpentSeconds" validate:"gte=0"`
	EstimatedMinutes int    `json:"estimatedMinutes" validate:"gte=0"`
}

type UpdateSessionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}
