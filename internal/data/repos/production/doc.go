// Package production holds the table repos for production requests, their detail
// records and the change history. Aggregates compose them inside one transaction.
package production
