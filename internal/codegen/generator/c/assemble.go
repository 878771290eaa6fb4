package cgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/canfestival-tools/objdictgen/internal/od"
)

var sourceTmpl = template.Must(template.New("source").Parse(`{{.Banner}}
#include "{{.HeaderName}}"

/**************************************************************************/
/* Declaration of mapped variables                                        */
/**************************************************************************/
{{.Mapped}}
/**************************************************************************/
/* Declaration of value range types                                       */
/**************************************************************************/
{{.ValueRanges}}
/**************************************************************************/
/* The node id                                                            */
/**************************************************************************/
/* node_id default value.*/
UNS8 {{.Node}}_bDeviceNodeId = 0x{{printf "%02X" .NodeID}};

/**************************************************************************/
/* Array of message processing information */

const UNS8 {{.Node}}_iam_a_slave = {{.Slave}};

{{.Heartbeats}}

/*
$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$

                               OBJECT DICTIONARY

$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$$
*/
{{range .Fragments}}{{.}}{{end}}
/**************************************************************************/
/* Declaration of pointed variables                                       */
/**************************************************************************/
{{.Pointers}}
const indextable {{.Node}}_objdict[] =
{
{{.Rows}}};

const indextable * {{.Node}}_scanIndexOD (CO_Data *d, UNS16 wIndex, UNS32 * errorCode)
{
    int i;
    (void)d; /* unused parameter */
    switch(wIndex){
{{.Cases}}       default:
            *errorCode = OD_NO_SUCH_OBJECT;
            return NULL;
    }
    *errorCode = OD_SUCCESSFUL;
    return &{{.Node}}_objdict[i];
}

/*
 * To count at which received SYNC a PDO must be sent.
 * Even if no pdoTransmit are defined, at least one entry is computed
 * for compilations issues.
 */
{{.PDOStatus}}{{.QuickIndex}}
const UNS16 {{.Node}}_ObjdictSize = sizeof({{.Node}}_objdict)/sizeof({{.Node}}_objdict[0]);

CO_Data {{.Node}}_Data = CANOPEN_NODE_DATA_INITIALIZER({{.Node}});

`))

var headerTmpl = template.Must(template.New("header").Parse(`{{.Banner}}
#ifndef {{.Guard}}
#define {{.Guard}}

#include "data.h"

/* Prototypes of function provided by object dictionnary */
UNS32 {{.Node}}_valueRangeTest (UNS8 typeValue, void * value);
const indextable * {{.Node}}_scanIndexOD (CO_Data *d, UNS16 wIndex, UNS32 * errorCode);

/* Master node data struct */
extern CO_Data {{.Node}}_Data;
{{.Externs}}
#endif // {{.Guard}}
`))

var objectDefinesTmpl = template.Must(template.New("objectdefines").Parse(`{{.Banner}}
#ifndef {{.Guard}}
#define {{.Guard}}

/*
    Object defines naming convention:
    General:
        * All characters in object names that does not match [a-zA-Z0-9_] will be replaced by '_'.
        * Case of object dictionary names will be kept as is.
    Index : Node object dictionary name +_+ index name +_+ Idx
    SubIndex : Node object dictionary name +_+ index name +_+ subIndex name +_+ sIdx
*/
{{.Defines}}
#endif /* {{.Guard}} */
`))

type sourceData struct {
	Banner      string
	HeaderName  string
	Node        string
	NodeID      uint8
	Slave       int
	Mapped      string
	ValueRanges string
	Heartbeats  string
	Fragments   []string
	Pointers    string
	Rows        string
	Cases       string
	PDOStatus   string
	QuickIndex  string
}

type headerData struct {
	Banner  string
	Guard   string
	Node    string
	Externs string
	Defines string
}

// assemble renders the three files from the compiled fragments, which
// must be sorted by index.
func (g *generation) assemble(headerName string, fragments []*fragment, ranges *valueRanges, table *indexTable, heartbeats int) (*Files, error) {
	var mapped, externs, pointers, defines strings.Builder
	bodies := make([]string, 0, len(fragments))
	for _, f := range fragments {
		bodies = append(bodies, f.body)
		mapped.WriteString(f.mapped)
		externs.WriteString(f.externs)
		pointers.WriteString(f.pointers)
		defines.WriteString(f.defines)
	}

	slave := 0
	if g.node.Type() == od.Slave {
		slave = 1
	}
	timers := strings.TrimSuffix(strings.Repeat("TIMER_NONE,", heartbeats), ",")

	src := sourceData{
		Banner:      fileHeader,
		HeaderName:  headerName,
		Node:        g.nodeName,
		NodeID:      g.node.ID(),
		Slave:       slave,
		Mapped:      mapped.String(),
		ValueRanges: ranges.content,
		Heartbeats:  fmt.Sprintf("TIMER_HANDLE %s_heartBeatTimers[%d] = {%s};", g.nodeName, heartbeats, timers),
		Fragments:   bodies,
		Pointers:    pointers.String(),
		Rows:        table.rows,
		Cases:       table.cases,
		PDOStatus:   table.pdoStatus(g.nodeName),
		QuickIndex:  table.quickIndex,
	}
	files := &Files{}
	var err error
	if files.Source, err = render(sourceTmpl, src); err != nil {
		return nil, err
	}
	hdr := headerData{
		Banner:  fileHeader,
		Guard:   includeGuard(headerName, "_"),
		Node:    g.nodeName,
		Externs: externs.String(),
	}
	if files.Header, err = render(headerTmpl, hdr); err != nil {
		return nil, err
	}
	hdr.Guard = includeGuard(headerName, "_OBJECTDEFINES_")
	hdr.Defines = defines.String()
	if files.ObjectDefines, err = render(objectDefinesTmpl, hdr); err != nil {
		return nil, err
	}
	return files, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %s tmpl: %w", t.Name(), err)
	}
	return buf.String(), nil
}
