package planner

// BudgetStatusOf exposes the budget classification to the external test package.
var BudgetStatusOf = budgetStatus
