package accounts

import (
	"github.com/angelmondragon/loanledger/pkg/config"
	"github.com/angelmondragon/loanledger/pkg/enums"
)

// Role names the part an account plays in a posting rule. Roles are mapped to
// account codes through configuration.
type Role string

const (
	RoleLoanReceivable  Role = "loan_receivable"
	RoleCash            Role = "cash"
	RoleBank            Role = "bank"
	RoleMobileMoney     Role = "mobile_money"
	RoleInterestIncome  Role = "interest_income"
	RoleFeeIncome       Role = "fee_income"
	RolePenaltyIncome   Role = "penalty_income"
	RoleLoanLossExpense Role = "loan_loss_expense"
	RoleBorrowerCredit  Role = "borrower_credit"
)

// Codes maps each role to the configured account code.
type Codes map[Role]string

func CodesFromConfig(cfg config.AccountsConfig) Codes {
	return Codes{
		RoleLoanReceivable:  cfg.LoanReceivable,
		RoleCash:            cfg.Cash,
		RoleBank:            cfg.Bank,
		RoleMobileMoney:     cfg.MobileMoney,
		RoleInterestIncome:  cfg.InterestIncome,
		RoleFeeIncome:       cfg.FeeIncome,
		RolePenaltyIncome:   cfg.PenaltyIncome,
		RoleLoanLossExpense: cfg.LoanLossExpense,
		RoleBorrowerCredit:  cfg.BorrowerCredit,
	}
}

// FundsRole returns the account role that money moves through for a method.
func FundsRole(method enums.PaymentMethod) Role {
	switch method {
	case enums.PaymentMethodBank:
		return RoleBank
	case enums.PaymentMethodMobileMoney:
		return RoleMobileMoney
	default:
		return RoleCash
	}
}

// IncomeRole returns the income account for a schedule bucket. Principal has
// no income account and maps to the receivable.
func IncomeRole(bucket enums.LedgerBucket) Role {
	switch bucket {
	case enums.LedgerBucketInterest:
		return RoleInterestIncome
	case enums.LedgerBucketFees:
		return RoleFeeIncome
	case enums.LedgerBucketPenalties:
		return RolePenaltyIncome
	default:
		return RoleLoanReceivable
	}
}
