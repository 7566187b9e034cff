package testutil

// SampleBatchCSV is a small input covering a standalone match, an
// escalated pair, a record without PII and an undecodable row.
const SampleBatchCSV = `record_id,data_json
1,"{""phone"": ""9876543210"", ""order"": ""A-1""}"
2,"{""name"": ""John Doe"", ""email"": ""john@example.com""}"
3,"{""age"": ""25"", ""city"": ""Mumbai""}"
4,"{broken"
`
