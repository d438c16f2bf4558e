package subscription

import "github.com/google/uuid"

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

var Statuses = []Status{StatusActive, StatusCancelled, StatusExpired}

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyINR Currency = "INR"
)

var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyINR}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

type Category string

const (
	CategoryFood          Category = "food"
	CategoryClothing      Category = "clothing"
	CategoryElectronics   Category = "electronics"
	CategoryBooks         Category = "books"
	CategoryHealth        Category = "health"
	CategoryBeauty        Category = "beauty"
	CategorySports        Category = "sports"
	CategoryOther         Category = "other"
	CategoryEntertainment Category = "entertainment"
	CategoryEducation     Category = "education"
)

var Categories = []Category{
	CategoryFood, CategoryClothing, CategoryElectronics, CategoryBooks, CategoryHealth,
	CategoryBeauty, CategorySports, CategoryOther, CategoryEntertainment, CategoryEducation,
}

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit card"
	PaymentDebitCard  PaymentMethod = "debit card"
	PaymentNetBanking PaymentMethod = "net banking"
	PaymentUPI        PaymentMethod = "upi"
	PaymentWallet     PaymentMethod = "wallet"
)

var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentDebitCard, PaymentNetBanking, PaymentUPI, PaymentWallet}

// Defaults applied when a create request leaves the field empty.
const (
	DefaultCurrency      = CurrencyINR
	DefaultFrequency     = FrequencyMonthly
	DefaultCategory      = CategoryOther
	DefaultPaymentMethod = PaymentCreditCard
)

// Roles recognised by the authorization checks.
const (
	RoleAdministrator = "Administrator"
	RoleUser          = "User"
)

// Requester identifies who is calling a Service method.
type Requester struct {
	UserID uuid.UUID
	Role   string
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdministrator
}

func (r Requester) authenticated() bool {
	return r.UserID != uuid.Nil
}

// Contact is the owner information a reminder needs.
type Contact struct {
	Name  string
	Email string
}
