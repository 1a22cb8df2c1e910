package customer

const getAllCustomersSQL = `
SELECT customer_id, customer_name, address, created_at, updated_at
FROM customer
ORDER BY created_at, customer_id
`

const getCustomerSQL = `
SELECT customer_id, customer_name, address, created_at, updated_at
FROM customer
WHERE customer_id = ?
`

const createCustomerSQL = `
INSERT INTO customer (
    customer_id, customer_name, address, created_at, updated_at
) VALUES (?, ?, ?, ?, ?)
`

const updateCustomerSQL = `
UPDATE customer
SET customer_name = ?, address = ?, updated_at = ?
WHERE customer_id = ?
`

const deleteCustomerSQL = `
DELETE FROM customer
WHERE customer_id = ?
`

const customerExistsSQL = `
SELECT EXISTS(
    SELECT 1 FROM customer WHERE customer_id = ?
)
`

const countCustomersSQL = `
SELECT COUNT(*) FROM customer
`

const clearCustomersSQL = `
DELETE FROM customer
`
