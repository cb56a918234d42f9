package commerce

// Wire documents for the backend's query/mutation schema. Every operation
// maps 1:1 onto exactly one of these.

const orderFields = `
id
code
state
currencyCode
subTotalWithTax
shippingWithTax
totalWithTax
lines {
  id
  quantity
  linePriceWithTax
  productVariant {
    id
    name
    sku
    priceWithTax
    previewImage
  }
}
customer {
  firstName
  lastName
  emailAddress
  phoneNumber
}
shippingAddress {
  fullName
  streetLine1
  streetLine2
  city
  province
  postalCode
  countryCode
  phoneNumber
}
shippingLines {
  methodId
  methodName
  priceWithTax
}
payments {
  id
  method
  state
  amount
  transactionId
}
errorCode
message
`

const activeOrderQuery = `
query ActiveOrder {
  activeOrder {` + orderFields + `}
}`

const addItemMutation = `
mutation AddItemToOrder($productVariantId: ID!, $quantity: Int!) {
  addItemToOrder(productVariantId: $productVariantId, quantity: $quantity) {` + orderFields + `}
}`

const adjustLineMutation = `
mutation AdjustOrderLine($orderLineId: ID!, $quantity: Int!) {
  adjustOrderLine(orderLineId: $orderLineId, quantity: $quantity) {` + orderFields + `}
}`

const removeLineMutation = `
mutation RemoveOrderLine($orderLineId: ID!) {
  removeOrderLine(orderLineId: $orderLineId) {` + orderFields + `}
}`

const setCustomerMutation = `
mutation SetCustomerForOrder($input: CreateCustomerInput!) {
  setCustomerForOrder(input: $input) {` + orderFields + `}
}`

const setShippingAddressMutation = `
mutation SetOrderShippingAddress($input: CreateAddressInput!) {
  setOrderShippingAddress(input: $input) {` + orderFields + `}
}`

const eligibleShippingMethodsQuery = `
query EligibleShippingMethods {
  eligibleShippingMethods {
    id
    name
    description
    priceWithTax
  }
}`

const setShippingMethodMutation = `
mutation SetOrderShippingMethod($shippingMethodId: ID!) {
  setOrderShippingMethod(shippingMethodId: $shippingMethodId) {` + orderFields + `}
}`

const transitionOrderStateMutation = `
mutation TransitionOrderToState($state: String!) {
  transitionOrderToState(state: $state) {` + orderFields + `}
}`

const addPaymentMutation = `
mutation AddPaymentToOrder($input: PaymentInput!) {
  addPaymentToOrder(input: $input) {` + orderFields + `}
}`
