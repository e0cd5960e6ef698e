package models

// ProfileListCapacity bounds the experience and skills lists of a profile.
const ProfileListCapacity = 10

// Address identifies a calling principal or a deployed instance.
type Address string

// Amount is a reward quantity.
type Amount int64

// Domain types

type PollRecord struct {
	ID           int64     `json:"id"`
	Author       Address   `json:"author"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Reward       Amount    `json:"reward"`
	Responses    []string  `json:"responses"`
	Participants []Address `json:"participants"`
	Open         bool      `json:"open"`
}

// HasParticipant reports whether addr already responded to the poll.
func (p PollRecord) HasParticipant(addr Address) bool {
	for _, participant := range p.Participants {
		if participant == addr {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with p.
func (p PollRecord) Clone() PollRecord {
	p.Responses = append([]string{}, p.Responses...)
	p.Participants = append([]Address{}, p.Participants...)
	return p
}

type RegisteredUser struct {
	Address     Address  `json:"address"`
	Username    string   `json:"username"`
	Descriptors []string `json:"descriptors"`
}

func (u RegisteredUser) Clone() RegisteredUser {
	u.Descriptors = append([]string{}, u.Descriptors...)
	return u
}

type Profile struct {
	Address    Address  `json:"address"`
	Username   string   `json:"username"`
	Experience []string `json:"experience"`
	Skills     []string `json:"skills"`
}

func (p Profile) Clone() Profile {
	p.Experience = append([]string{}, p.Experience...)
	p.Skills = append([]string{}, p.Skills...)
	return p
}

// Request types

type RegisterUserRequest struct {
	Username string `json:"username"`
}

type CreatePollRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      Amount `json:"reward"`
}

type RespondToPollRequest struct {
	Response string `json:"response"`
}

type CreateProfileRequest struct {
	Username   string   `json:"username"`
	Experience []string `json:"experience"`
	Skills     []string `json:"skills"`
}

// Response types

type IdentityResponse struct {
	Address     Address `json:"address"`
	CallerToken string  `json:"caller_token"`
}

type CreatePollResponse struct {
	PollID int64      `json:"poll_id"`
	Poll   PollRecord `json:"poll"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
