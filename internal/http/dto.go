package http

import (
	"time"

	"budget/internal/core"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authenticateResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	Firstname string    `json:"firstname,omitempty"`
	Lastname  string    `json:"lastname,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Active:    u.Active,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
	Total int64          `json:"total"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type categoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newCategoryListResponse(categories []core.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, newCategoryResponse(c))
	}
	return out
}

// transactionRequest takes the amount as a decimal string and the date as
// a YYYY-MM-DD calendar day.
type transactionRequest struct {
	CategoryID  string `json:"categoryId"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
}

type transactionResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Username      string     `json:"username"`
	CategoryID    string     `json:"categoryId"`
	CategoryName  string     `json:"categoryName"`
	CategoryColor string     `json:"categoryColor,omitempty"`
	Amount        core.Money `json:"amount"`
	Description   string     `json:"description,omitempty"`
	Date          string     `json:"date"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		Username:      t.UserUsername,
		CategoryID:    t.CategoryID,
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColor,
		Amount:        t.Amount,
		Description:   t.Description,
		Date:          t.Date.Format("2006-01-02"),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func newTransactionListResponse(transactions []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, newTransactionResponse(t))
	}
	return out
}

type transactionPageResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
}

type categoryTotalResponse struct {
	Name  string     `json:"name"`
	Total core.Money `json:"total"`
}

type summaryResponse struct {
	TotalIncome   core.Money `json:"totalIncome"`
	TotalExpenses core.Money `json:"totalExpenses"`
	NetBalance    core.Money `json:"netBalance"`

	CurrentMonthIncome   core.Money `json:"currentMonthIncome"`
	CurrentMonthExpenses core.Money `json:"currentMonthExpenses"`
	CurrentMonthBalance  core.Money `json:"currentMonthBalance"`

	CurrentYearSavings     core.Money   `json:"currentYearSavings"`
	CurrentYearSavingsRate core.Percent `json:"currentYearSavingsRate"`

	TwelveMonthAverageExpense core.Money `json:"twelveMonthAverageExpense"`

	RecentTransactions    []transactionResponse   `json:"recentTransactions"`
	TopSpendingCategories []categoryTotalResponse `json:"topSpendingCategories"`

	GeneratedAt time.Time `json:"generatedAt"`
}

func newSummaryResponse(s core.Summary) summaryResponse {
	top := make([]categoryTotalResponse, 0, len(s.TopSpendingCategories))
	for _, c := range s.TopSpendingCategories {
		top = append(top, categoryTotalResponse{Name: c.Name, Total: c.Total})
	}
	return summaryResponse{
		TotalIncome:               s.TotalIncome,
		TotalExpenses:             s.TotalExpenses,
		NetBalance:                s.NetBalance,
		CurrentMonthIncome:        s.CurrentMonthIncome,
		CurrentMonthExpenses:      s.CurrentMonthExpenses,
		CurrentMonthBalance:       s.CurrentMonthBalance,
		CurrentYearSavings:        s.CurrentYearSavings,
		CurrentYearSavingsRate:    s.CurrentYearSavingsRate,
		TwelveMonthAverageExpense: s.TwelveMonthAverageExpense,
		RecentTransactions:        newTransactionListResponse(s.RecentTransactions),
		TopSpendingCategories:     top,
		GeneratedAt:               s.GeneratedAt,
	}
}
