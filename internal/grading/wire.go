package grading

// EvaluateQuestion is the question part of an evaluate call. Only the text
// and model answer are needed; the rest is accepted for compatibility with
// clients that post the whole question record.
type EvaluateQuestion struct {
	ID            int    `json:"id,omitempty"`
	Text          string `json:"text"`
	Category      string `json:"category,omitempty"`
	CorrectAnswer string `json:"correctAnswer"`
}

// EvaluateRequest is the body of POST /api/evaluate.
type EvaluateRequest struct {
	Question   *EvaluateQuestion `json:"question"`
	UserAnswer string            `json:"userAnswer"`
}

// EvaluateResponse is the body returned by POST /api/evaluate.
type EvaluateResponse struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

// ToRequest converts the wire form; a missing question yields an
// incomplete Request.
func (r EvaluateRequest) ToRequest() Request {
	req := Request{LearnerAnswer: r.UserAnswer}
	if r.Question != nil {
		req.QuestionText = r.Question.Text
		req.ModelAnswer = r.Question.CorrectAnswer
	}
	return req
}

// NewEvaluateResponse converts a Result to its wire form.
func NewEvaluateResponse(res Result) EvaluateResponse {
	return EvaluateResponse{Status: res.Verdict.String(), Feedback: res.Feedback}
}
