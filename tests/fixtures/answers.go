package fixtures

// WarehouseAnswer is a complete model answer for a small warehouse scenario:
// two actors, two phases, one context, three nodes, two connectors and one
// intersection.
const WarehouseAnswer = `{"users":[{"name":"Picker","type":"human","description":"Picks orders"},{"name":"AGV","type":"robot","description":"Carries totes"}],` +
	`"phases":[{"name":"Pick","order":1},{"name":"Ship","order":2}],` +
	`"contexts":[{"name":"Aisle","order":1}],` +
	`"nodes":[` +
	`{"userName":"Picker","phaseName":"Pick","contextName":"Aisle","action":"scan","emotion":"neutral","emotionScore":0},` +
	`{"userName":"AGV","phaseName":"Pick","contextName":"Aisle","action":"carry","emotion":"positive","emotionScore":0.5},` +
	`{"userName":"AGV","phaseName":"Ship","contextName":"Aisle","action":"drop","emotion":"positive","emotionScore":0.2}],` +
	`"connectors":[{"fromNodeIndex":0,"toNodeIndex":1,"description":"handoff"},{"fromNodeIndex":1,"toNodeIndex":2,"description":"move"}],` +
	`"intersections":[{"phaseName":"Pick","contextName":"Aisle","userNames":["Picker","AGV"],"description":"handover"}]}`
