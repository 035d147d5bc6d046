package actions

const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// Payload carries whichever field the action produces
type Payload struct {
	Err   string `json:"err,omitempty"`
	Msg   string `json:"msg,omitempty"`
	News  string `json:"news,omitempty"`
	Token string `json:"token,omitempty"`
}

// Response is the single envelope every action and the login route reply
// with. Failures are values, never transport errors.
type Response struct {
	Status string  `json:"status"`
	Data   Payload `json:"data"`
}

func (r Response) OK() bool {
	return r.Status == StatusSuccess
}

// Detail returns the human readable part of the payload
func (r Response) Detail() string {
	switch {
	case r.Data.Err != "":
		return r.Data.Err
	case r.Data.News != "":
		return r.Data.News
	case r.Data.Token != "":
		return "token issued"
	default:
		return r.Data.Msg
	}
}

func Success(p Payload) Response {
	return Response{Status: StatusSuccess, Data: p}
}

func Failure(err string) Response {
	return Response{Status: StatusFailure, Data: Payload{Err: err}}
}
