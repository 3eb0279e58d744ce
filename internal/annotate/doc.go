// Package annotate renders conflict blocks as source comments.
//
// Each losing source of a coalesce.ConflictBlock gets one comment. In the C-style block form a changed region reads:
//
//	/* Unmerged change from project Foo
//	Before:
//	int x = 1;
//	After:
//	int x = 2;
//	*/
//
// A region the source added to a blank original uses a single "Added:" section, and a region the source blanked uses a single "Removed:" section. Line-prefixed styles
// (ex: LinePrefixed("'") for VB, LinePrefixed("#") for Python) put the prefix and a space before every comment line, including each line of the bodies.
//
// The header and section labels come from a Strings value passed to Render. DefaultStrings is English; CatalogStrings builds Strings for any language.Tag from a
// golang.org/x/text catalog (NewCatalog ships English and German).
//
// StyleTable maps file extensions to comment styles; DefaultStyles has the built-in table.
package annotate
