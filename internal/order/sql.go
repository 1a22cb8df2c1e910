package order

const getAllOrdersSQL = `
SELECT order_id, customer_id, gallons, order_date, created_at
FROM water_order
ORDER BY created_at, order_id
`

const getOrderSQL = `
SELECT order_id, customer_id, gallons, order_date, created_at
FROM water_order
WHERE order_id = ?
`

const getCustomerOrdersSQL = `
SELECT order_id, customer_id, gallons, order_date, created_at
FROM water_order
WHERE customer_id = ?
ORDER BY created_at, order_id
`

const ordersInRangeSQL = `
SELECT order_id, customer_id, gallons, order_date, created_at
FROM water_order
WHERE order_date BETWEEN ? AND ?
ORDER BY created_at, order_id
`

const createOrderSQL = `
INSERT INTO water_order (
    order_id, customer_id, gallons, order_date, created_at
) VALUES (?, ?, ?, ?, ?)
`

const updateOrderSQL = `
UPDATE water_order
SET gallons = ?, order_date = ?
WHERE order_id = ?
`

const deleteOrderSQL = `
DELETE FROM water_order
WHERE order_id = ?
`

const deleteCustomerOrdersSQL = `
DELETE FROM water_order
WHERE customer_id = ?
`

const sumGallonsSinceSQL = `
SELECT COALESCE(SUM(gallons), 0)
FROM water_order
WHERE order_date >= ?
`

const clearOrdersSQL = `
DELETE FROM water_order
`
