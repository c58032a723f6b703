// Package harness runs storefront editing scenarios end to end.
//
// A scenario seeds a merchant, plays a list of turns through an agent
// session whose model replies are scripted, and then checks assertions
// against the final state. Each scenario runs against a fresh in-memory
// SQLite store with a stepping clock and sequential ids, so traces are
// reproducible and can be compared against golden files.
//
// # Scenario Format
//
//	name: add_section
//	description: "Adding a newsletter to an empty homepage"
//	merchant: m1
//	seed:
//	  brand: { name: Acme Goods, tone: friendly }
//	  products:
//	    - { id: p1, title: Mug, price: 1200 }
//	  hero: { title: Brew better }
//	  sections:
//	    - { id: s1, type: faq, position: 0 }
//	turns:
//	  - instruction: Add a newsletter signup
//	    reply: |
//	      {"actions": [{"type": "ADD_SECTION", "payload": {"section_type": "newsletter"}}]}
//	    expect: { success: true, mutations: 1 }
//	  - instruction: Remove the FAQ
//	    actions:
//	      - { type: REMOVE_SECTION, payload: { section_id: s1 } }
//	assertions:
//	  - { type: sections, ids: [id-1] }
//	  - { type: section, id: id-1, expect: { visible: true } }
//
// A turn gives either the raw model reply or a list of actions, which is
// sent as a {"actions": [...]} reply.
//
// # Assertion Types
//
//   - sections: the homepage section ids, in order
//   - section: subset match on one section's agent-facing JSON
//   - products: the number of products
//   - brand: subset match on the brand
//   - hero: subset match on the hero
//
// Every run also checks that the session's final state matches a fresh
// load from the store.
package harness
