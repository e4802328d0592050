package assessments

import "time"

type testResponse struct {
	ID                string    `json:"id"`
	OrgID             string    `json:"orgId"`
	CreatedBy         string    `json:"createdBy,omitempty"`
	Title             string    `json:"title"`
	DurationMinutes   int       `json:"durationMinutes"`
	TotalMarks        int       `json:"totalMarks"`
	PassingPercentage float64   `json:"passingPercentage"`
	Instructions      string    `json:"instructions,omitempty"`
	AllowedUsers      []string  `json:"allowedUsers,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toTestResponse(t Test) testResponse {
	return testResponse{
		ID:                t.ID,
		OrgID:             t.OrgID,
		CreatedBy:         t.CreatedBy,
		Title:             t.Title,
		DurationMinutes:   t.DurationMinutes,
		TotalMarks:        t.TotalMarks,
		PassingPercentage: t.PassingPercentage,
		Instructions:      t.Instructions,
		AllowedUsers:      t.AllowedUsers,
		IsActive:          t.IsActive,
		CreatedAt:         t.CreatedAt,
	}
}

// questionResponse hides the correct answer from applicants; recruiters get
// the full question via includeAnswer.
type questionResponse struct {
	ID            string   `json:"id"`
	OrderIndex    int      `json:"orderIndex"`
	QuestionText  string   `json:"questionText"`
	QuestionType  string   `json:"questionType"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer any      `json:"correctAnswer,omitempty"`
	Marks         int      `json:"marks"`
	Difficulty    string   `json:"difficulty"`
}

func toQuestionResponse(q TestQuestion, includeAnswer bool) questionResponse {
	out := questionResponse{
		ID:           q.ID,
		OrderIndex:   q.OrderIndex,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      q.Options,
		Marks:        q.Marks,
		Difficulty:   q.Difficulty,
	}
	if includeAnswer {
		out.CorrectAnswer = q.CorrectAnswer
	}
	return out
}

type assignmentResponse struct {
	ID                 string         `json:"id"`
	TestID             string         `json:"testId"`
	ApplicationID      string         `json:"applicationId"`
	Status             string         `json:"status"`
	AssignedBy         string         `json:"assignedBy,omitempty"`
	AssignedAt         time.Time      `json:"assignedAt"`
	TestStartDate      time.Time      `json:"testStartDate"`
	TestEndDate        time.Time      `json:"testEndDate"`
	IsProctored        bool           `json:"isProctored"`
	ProctoringSettings map[string]any `json:"proctoringSettings,omitempty"`
	Availability       string         `json:"availability,omitempty"`
}

func toAssignmentResponse(a TestAssignment) assignmentResponse {
	return assignmentResponse{
		ID:                 a.ID,
		TestID:             a.TestID,
		ApplicationID:      a.ApplicationID,
		Status:             string(a.Status),
		AssignedBy:         a.AssignedBy,
		AssignedAt:         a.AssignedAt,
		TestStartDate:      a.TestStartDate,
		TestEndDate:        a.TestEndDate,
		IsProctored:        a.IsProctored,
		ProctoringSettings: a.ProctoringSettings,
	}
}

func toAssignmentViewResponse(v AssignmentView) assignmentResponse {
	out := toAssignmentResponse(v.TestAssignment)
	out.Availability = string(v.Availability)
	return out
}

type attemptResponse struct {
	ID             string         `json:"id"`
	AssignmentID   string         `json:"assignmentId"`
	TestID         string         `json:"testId"`
	ApplicationID  string         `json:"applicationId"`
	ApplicantID    string         `json:"applicantId"`
	StartedAt      time.Time      `json:"startedAt"`
	SubmittedAt    *time.Time     `json:"submittedAt,omitempty"`
	Status         string         `json:"status"`
	TotalScore     *float64       `json:"totalScore,omitempty"`
	Percentage     *float64       `json:"percentage,omitempty"`
	IsPassed       *bool          `json:"isPassed,omitempty"`
	IsEvaluated    bool           `json:"isEvaluated"`
	ProctoringData map[string]any `json:"proctoringData,omitempty"`
	ViolationScore float64        `json:"violationScore"`
}

func toAttemptResponse(a TestAttempt) attemptResponse {
	return attemptResponse{
		ID:             a.ID,
		AssignmentID:   a.AssignmentID,
		TestID:         a.TestID,
		ApplicationID:  a.ApplicationID,
		ApplicantID:    a.ApplicantID,
		StartedAt:      a.StartedAt,
		SubmittedAt:    a.SubmittedAt,
		Status:         string(a.Status),
		TotalScore:     a.TotalScore,
		Percentage:     a.Percentage,
		IsPassed:       a.IsPassed,
		IsEvaluated:    a.IsEvaluated,
		ProctoringData: a.ProctoringData,
		ViolationScore: a.ViolationScore,
	}
}

type responseResponse struct {
	AttemptID        string         `json:"attemptId"`
	QuestionID       string         `json:"questionId"`
	SelectedOptions  []string       `json:"selectedOptions,omitempty"`
	Answer           string         `json:"answer,omitempty"`
	QuestionSnapshot map[string]any `json:"questionSnapshot,omitempty"`
	TimeTakenSeconds int            `json:"timeTakenSeconds"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func toResponseResponse(r TestResponse) responseResponse {
	return responseResponse{
		AttemptID:        r.AttemptID,
		QuestionID:       r.QuestionID,
		SelectedOptions:  r.SelectedOptions,
		Answer:           r.Answer,
		QuestionSnapshot: r.QuestionSnapshot,
		TimeTakenSeconds: r.TimeTakenSeconds,
		UpdatedAt:        r.UpdatedAt,
	}
}
