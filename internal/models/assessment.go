package models

// Training is a training-session score for one participant.
type Training struct {
	ID             int64    `json:"id"`
	Timestamp      string   `json:"timestamp"`
	Month          string   `json:"bulan"`
	Region         string   `json:"region"`
	BranchArea     string   `json:"cabang_area"`
	SupervisorName string   `json:"nama_atasan_langsung"`
	Subject        string   `json:"materi_pelatihan"`
	FullName       string   `json:"nama_lengkap_sesuai_ktp"`
	Position       string   `json:"jabatan"`
	TotalScore     *float64 `json:"total_nilai"`
	EssayScore     *float64 `json:"nilai_essay"`
	Total          *float64 `json:"total"`
}

// Coloris is a colorist assessment result.
type Coloris struct {
	ID             int64    `json:"id"`
	Timestamp      string   `json:"timestamp"`
	Month          string   `json:"bulan"`
	Region         string   `json:"region"`
	Branch         string   `json:"cabang"`
	Subject        string   `json:"materi"`
	SupervisorName string   `json:"nama_atasan_langsung"`
	StoreName      string   `json:"nama_toko"`
	FullName       string   `json:"nama_lengkap_sesuai_ktp"`
	ChoiceScore    *float64 `json:"nilai_pg"`
	FinalScore     *float64 `json:"nilai_akhir"`
	Total          *float64 `json:"total"`
}

// User is the account returned by the upstream login endpoint.
type User struct {
	ID       any    `json:"id,omitempty"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
}

// DisplayName prefers the full name over the login name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
