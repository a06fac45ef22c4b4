package mcpserver

// ItemFormatContract describes reading-list items and their lifecycle for
// MCP clients.
const ItemFormatContract = `# folio Item Contract

Items live in one of two lists:

- **inbox**: things being read, watched or listened to. Bounded by the
  ` + "`max_items`" + ` setting (default 30).
- **archive**: finished items and reference material. Unbounded.

## Fields

| field | required | values |
|---|---|---|
| name | yes | non-empty text |
| type | no | blog_post (default), video, podcast, news, thread, academic_paper, other |
| author | no | free text |
| link | no | URL |
| note | no | free text |
| kind | no | normal (default), reference |

Every item also carries a stable ` + "`id`" + ` (UUID), ` + "`status`" + `
(todo, doing, done) and timestamps ` + "`added_at`" + `, ` + "`started_at`" + `,
` + "`finished_at`" + `.

## Referring to items

Tools that take ` + "`ref`" + ` accept:

1. a **display id**: the 1-based position over inbox followed by archive, as shown
   by list_items. Display ids shift when items move, so re-list before reusing one.
2. a **stable id** or any unique prefix of it with at least 4 characters. Prefer
   these when making several changes in a row.

## Lifecycle

- New items start as todo. ` + "`started_at`" + ` is set the first time an item becomes
  doing and ` + "`finished_at`" + ` the first time it becomes done. Moving back to todo
  clears both.
- Setting an inbox item to done moves it to the end of the archive.
- Setting an archived item to todo or doing moves it back into the inbox, subject to
  the capacity rules below. Reference items always stay in the archive.
- Reference items are added straight to the archive as done and never count toward
  the inbox limit.

## When the inbox is full

The ` + "`archive_on_overflow`" + ` setting decides what happens:

- abort (default): the change is rejected and nothing is modified.
- todo: the oldest todo item is marked done and archived to make room.
- any: the first inbox item is marked done and archived.

A rejected change returns the options available to the user. Do not delete items
to make room without asking.
`
