// Package formxml registers and removes script bindings in form XML.
//
// A form document has a root <form> element with two optional sections:
//
//	<form>
//	  <formLibraries>
//	    <Library name="new_/scripts/lead.js" libraryUniqueId="{...}" />
//	  </formLibraries>
//	  <events>
//	    <event name="onload" application="false" active="false">
//	      <Handlers>
//	        <Handler functionName="onLoad" libraryName="new_/scripts/lead.js"
//	                 handlerUniqueId="{...}" enabled="true" parameters=""
//	                 passExecutionContext="true" />
//	      </Handlers>
//	    </event>
//	  </events>
//	</form>
//
// Every Editor operation takes the document text and returns the new text.
// Operations are idempotent: applying the same upsert twice yields the same
// document, and a changed upsert updates the existing entry in place.
// Unique ids are generated only when an entry is created and are preserved
// on every later upsert. Deleting something that is not there returns the
// input unchanged.
//
// Library and function names are NFC normalized before they are matched or
// written.
package formxml
