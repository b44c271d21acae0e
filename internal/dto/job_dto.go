package dto

type CreateJobRequest struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

type BackfillResult struct {
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
}
