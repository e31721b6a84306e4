package extraction

import "fmt"

// DocumentType identifies which of the five supported financial document
// categories an upload belongs to. Each type has its own extraction
// prompt and expected field set.
type DocumentType int

const (
	BankStatement DocumentType = iota
	Cheque
	ProfitAndLoss
	SalarySlip
	TransactionHistory
)

var documentTypeNames = map[DocumentType]string{
	BankStatement:      "Bank Statement",
	Cheque:             "Cheques",
	ProfitAndLoss:      "Profit and Loss Statement",
	SalarySlip:         "Salary Slip",
	TransactionHistory: "Transaction History",
}

// ParseDocumentType maps the wire name of a document type to its
// enumeration value. Unknown names are an error rather than an empty
// prompt.
func ParseDocumentType(name string) (DocumentType, error) {
	for t, n := range documentTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown document type: %q", name)
}

// DocumentTypes lists the supported type names in display order.
func DocumentTypes() []string {
	return []string{
		documentTypeNames[BankStatement],
		documentTypeNames[Cheque],
		documentTypeNames[ProfitAndLoss],
		documentTypeNames[SalarySlip],
		documentTypeNames[TransactionHistory],
	}
}

func (t DocumentType) String() string {
	if n, ok := documentTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("DocumentType(%d)", int(t))
}

// Prompt returns the fixed extraction prompt for the document type. The
// templates ask the model for exactly five labeled values, one per line,
// so the reply can be parsed line by line.
func (t DocumentType) Prompt() string {
	return documentPrompts[t]
}

var documentPrompts = map[DocumentType]string{
	BankStatement: `Analyze this financial document carefully. Extract the most significant numeric financial parameters:
- Look for balance, credits, debits, and other key monetary values.
- Be flexible in parameter identification.
- Return ONLY 5 numeric values with clear labels, one per line.

The output format should be:
Total Balance: 5000.50
Monthly Credits: 3200.75
Monthly Debits: 2800.25
Opening Balance: 4500.00
Closing Balance: 5200.75
Do not include any statements or additional text.`,

	Cheque: `Extract key details from the cheque:
- Focus on numeric values.
- Include cheque number, amount, date, and account details.
- Provide ONLY 5 clear, labeled values, one per line.

The output format should be:
Cheque Number: 123456
Amount: 5000.00
Date Timestamp: 1701907200
Bank Account: 9876
Transaction Value: 5000.00
Do not include any statements or additional text.`,

	ProfitAndLoss: `Extract critical financial metrics from the Profit and Loss statement:
- Total Revenue
- Total Expenses
- Gross Profit
- Net Profit
- Operating Expenses
Return ONLY 5 clear, labeled numeric values, one per line.

The output format should be:
Total Revenue: 100000.00
Total Expenses: 75000.00
Gross Profit: 25000.00
Net Profit: 20000.00
Operating Expenses: 5000.00
Do not include any statements or additional text.`,

	SalarySlip: `Extract key salary details from the salary slip:
- Basic Salary
- Total Allowances
- Total Deductions
- Net Salary
- Gross Salary
Return ONLY 5 clear, labeled numeric values, one per line.

The output format should be:
Basic Salary: 30000.00
Total Allowances: 5000.00
Total Deductions: 2000.00
Net Salary: 27000.00
Gross Salary: 32000.00
Do not include any statements or additional text.`,

	TransactionHistory: `Extract summary transaction metrics from the transaction history:
- Total Number of Transactions
- Total Credits
- Total Debits
- Highest Single Transaction Amount
- Average Transaction Amount
Return ONLY 5 clear, labeled numeric values, one per line.

The output format should be:
Total Number of Transactions: 150
Total Credits: 50000.00
Total Debits: 30000.00
Highest Single Transaction Amount: 10000.00
Average Transaction Amount: 400.00
Do not include any statements or additional text.`,
}
